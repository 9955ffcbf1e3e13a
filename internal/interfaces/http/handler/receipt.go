package handler

import (
	"github.com/gin-gonic/gin"

	procurementapp "github.com/erp/factory/internal/application/procurement"
)

// ReceiptHandler handles supplier receipts
type ReceiptHandler struct {
	BaseHandler
	receiptService *procurementapp.ReceiptService
	tables         *Tables
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(receiptService *procurementapp.ReceiptService, tables *Tables) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService, tables: tables}
}

// List returns one page of supplier receipts
func (h *ReceiptHandler) List(c *gin.Context) {
	q, ok := h.tableQuery(c, h.tables.resolver(), procurementapp.ReceiptsTableKey)
	if !ok {
		return
	}
	res, err := h.receiptService.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(&h.BaseHandler, c, res)
}

// Get returns one receipt with its lines
func (h *ReceiptHandler) Get(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	r, err := h.receiptService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, r)
}

// Create drafts a receipt
func (h *ReceiptHandler) Create(c *gin.Context) {
	var req procurementapp.CreateReceiptRequest
	if !h.BindJSON(c, &req) {
		return
	}
	r, err := h.receiptService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, r)
}

// Update changes a draft receipt
func (h *ReceiptHandler) Update(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req procurementapp.UpdateReceiptRequest
	if !h.BindJSON(c, &req) {
		return
	}
	r, err := h.receiptService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, r)
}

// Delete removes a receipt that has not been received
func (h *ReceiptHandler) Delete(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.receiptService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Receive books the receipt lines into stock
func (h *ReceiptHandler) Receive(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	r, err := h.receiptService.Receive(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, r)
}

// Cancel voids a draft receipt
func (h *ReceiptHandler) Cancel(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	r, err := h.receiptService.Cancel(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, r)
}
