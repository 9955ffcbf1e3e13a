package handler

import (
	"github.com/gin-gonic/gin"

	financeapp "github.com/erp/factory/internal/application/finance"
)

// PaymentHandler handles client payments
type PaymentHandler struct {
	BaseHandler
	paymentService *financeapp.PaymentService
	tables         *Tables
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *financeapp.PaymentService, tables *Tables) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, tables: tables}
}

// List returns one page of payments
func (h *PaymentHandler) List(c *gin.Context) {
	q, ok := h.tableQuery(c, h.tables.resolver(), financeapp.PaymentsTableKey)
	if !ok {
		return
	}
	res, err := h.paymentService.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(&h.BaseHandler, c, res)
}

// Export downloads the payment list as a spreadsheet
func (h *PaymentHandler) Export(c *gin.Context) {
	exportTable(&h.BaseHandler, c, h.tables, h.paymentService.Table(), h.paymentService.Export)
}

// Get returns one payment
func (h *PaymentHandler) Get(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	p, err := h.paymentService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Create records a payment
func (h *PaymentHandler) Create(c *gin.Context) {
	var req financeapp.CreatePaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p, err := h.paymentService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, p)
}

// Update changes a payment
func (h *PaymentHandler) Update(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req financeapp.UpdatePaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p, err := h.paymentService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Delete removes a payment
func (h *PaymentHandler) Delete(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.paymentService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
