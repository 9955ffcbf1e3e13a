package handler

import (
	"github.com/gin-gonic/gin"

	invoicingapp "github.com/erp/factory/internal/application/invoicing"
)

// InvoiceHandler serves synced invoices. Invoices are written by the sync
// endpoints only.
type InvoiceHandler struct {
	BaseHandler
	invoiceService *invoicingapp.InvoiceService
	tables         *Tables
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *invoicingapp.InvoiceService, tables *Tables) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService, tables: tables}
}

// List returns one page of invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	q, ok := h.tableQuery(c, h.tables.resolver(), invoicingapp.InvoicesTableKey)
	if !ok {
		return
	}
	res, err := h.invoiceService.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(&h.BaseHandler, c, res)
}

// Export downloads the invoice list as a spreadsheet
func (h *InvoiceHandler) Export(c *gin.Context) {
	exportTable(&h.BaseHandler, c, h.tables, h.invoiceService.Table(), h.invoiceService.Export)
}

// Get returns one invoice with its items
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	inv, err := h.invoiceService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// Delete removes an invoice and its items
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.invoiceService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
