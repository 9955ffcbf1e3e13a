package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	syncapp "github.com/erp/factory/internal/application/sync"
	"github.com/erp/factory/internal/interfaces/http/dto"
)

// SyncHandler receives entity upserts from external systems
type SyncHandler struct {
	BaseHandler
	syncService *syncapp.Service
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(syncService *syncapp.Service) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

// UpsertClient creates or updates a client by external id
func (h *SyncHandler) UpsertClient(c *gin.Context) {
	upsert(h, c, h.syncService.UpsertClient)
}

// UpsertCompany creates or updates a company client by external id
func (h *SyncHandler) UpsertCompany(c *gin.Context) {
	upsert(h, c, h.syncService.UpsertCompany)
}

// UpsertContact creates or updates a client contact
func (h *SyncHandler) UpsertContact(c *gin.Context) {
	upsert(h, c, h.syncService.UpsertContact)
}

// UpsertInvoice creates or updates an invoice with its nested items
func (h *SyncHandler) UpsertInvoice(c *gin.Context) {
	upsert(h, c, h.syncService.UpsertInvoice)
}

// UpsertInvoiceItem creates or updates one invoice line
func (h *SyncHandler) UpsertInvoiceItem(c *gin.Context) {
	upsert(h, c, h.syncService.UpsertInvoiceItem)
}

// Batch reconciles several entity kinds in dependency order
func (h *SyncHandler) Batch(c *gin.Context) {
	var req syncapp.BatchRequest
	if !h.BindJSON(c, &req) {
		return
	}
	res, err := h.syncService.Batch(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// BulkInvoices reconciles invoices with nested items
func (h *SyncHandler) BulkInvoices(c *gin.Context) {
	var req syncapp.BulkInvoicesRequest
	if !h.BindJSON(c, &req) {
		return
	}
	res, err := h.syncService.BulkInvoices(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// Stats reports synchronized record counts per source
func (h *SyncHandler) Stats(c *gin.Context) {
	stats, err := h.syncService.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// upsert decodes a payload of type T and answers 201 when the record was
// inserted, 200 when it was updated.
func upsert[T any](h *SyncHandler, c *gin.Context, fn func(context.Context, T) (*syncapp.UpsertResult, error)) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, "Failed to read request body")
		return
	}
	if len(raw) == 0 {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Request body is empty")
		return
	}
	payload, err := syncapp.Decode[T](raw)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	res, err := fn(c.Request.Context(), payload)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if res.Outcome == syncapp.OutcomeCreated {
		h.Created(c, res)
		return
	}
	h.Success(c, res)
}
