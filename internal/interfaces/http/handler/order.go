package handler

import (
	"github.com/gin-gonic/gin"

	financeapp "github.com/erp/factory/internal/application/finance"
	tradeapp "github.com/erp/factory/internal/application/trade"
)

// OrderHandler handles client orders
type OrderHandler struct {
	BaseHandler
	orderService   *tradeapp.OrderService
	paymentService *financeapp.PaymentService
	tables         *Tables
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *tradeapp.OrderService, paymentService *financeapp.PaymentService, tables *Tables) *OrderHandler {
	return &OrderHandler{orderService: orderService, paymentService: paymentService, tables: tables}
}

// List returns one page of orders
func (h *OrderHandler) List(c *gin.Context) {
	q, ok := h.tableQuery(c, h.tables.resolver(), tradeapp.OrdersTableKey)
	if !ok {
		return
	}
	res, err := h.orderService.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(&h.BaseHandler, c, res)
}

// Export downloads the order list as a spreadsheet
func (h *OrderHandler) Export(c *gin.Context) {
	exportTable(&h.BaseHandler, c, h.tables, h.orderService.Table(), h.orderService.Export)
}

// Get returns one order with its lines
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Create places an order
func (h *OrderHandler) Create(c *gin.Context) {
	var req tradeapp.CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	order, err := h.orderService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// Update changes an order and optionally replaces its lines
func (h *OrderHandler) Update(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.UpdateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	order, err := h.orderService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// UpdateStatus moves an order to another status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.UpdateStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	order, err := h.orderService.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Delete removes an order
func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.orderService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// OrderedProducts sums open demand per product
func (h *OrderHandler) OrderedProducts(c *gin.Context) {
	list, err := h.orderService.OrderedProducts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, list)
}

// Payments lists the payments of an order with the outstanding balance
func (h *OrderHandler) Payments(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	resp, err := h.paymentService.ListByOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
