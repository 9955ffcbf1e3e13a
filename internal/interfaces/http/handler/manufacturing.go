package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	manufacturingapp "github.com/erp/factory/internal/application/manufacturing"
)

// ManufacturingHandler handles manufacturing orders
type ManufacturingHandler struct {
	BaseHandler
	orderService *manufacturingapp.OrderService
	tables       *Tables
}

// NewManufacturingHandler creates a new ManufacturingHandler
func NewManufacturingHandler(orderService *manufacturingapp.OrderService, tables *Tables) *ManufacturingHandler {
	return &ManufacturingHandler{orderService: orderService, tables: tables}
}

// List returns one page of manufacturing orders
func (h *ManufacturingHandler) List(c *gin.Context) {
	q, ok := h.tableQuery(c, h.tables.resolver(), manufacturingapp.OrdersTableKey)
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

// Export downloads the manufacturing orders as a spreadsheet
func (h *ManufacturingHandler) Export(c *gin.Context) {
	exportTable(&h.BaseHandler, c, h.tables, h.orderService.Table(), h.orderService.Export)
}

// Get returns one manufacturing order
func (h *ManufacturingHandler) Get(c *gin.Context) {
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

// Create schedules a manufacturing order
func (h *ManufacturingHandler) Create(c *gin.Context) {
	var req manufacturingapp.CreateOrderRequest
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

// Update changes a manufacturing order
func (h *ManufacturingHandler) Update(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req manufacturingapp.UpdateOrderRequest
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

// Delete removes a manufacturing order
func (h *ManufacturingHandler) Delete(c *gin.Context) {
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

// Start moves the order into production
func (h *ManufacturingHandler) Start(c *gin.Context) { h.transition(c, h.orderService.Start) }

// Pause suspends production
func (h *ManufacturingHandler) Pause(c *gin.Context) { h.transition(c, h.orderService.Pause) }

// Resume continues a paused order
func (h *ManufacturingHandler) Resume(c *gin.Context) { h.transition(c, h.orderService.Resume) }

// Stop cancels the order
func (h *ManufacturingHandler) Stop(c *gin.Context) { h.transition(c, h.orderService.Stop) }

func (h *ManufacturingHandler) transition(c *gin.Context, fn func(context.Context, uuid.UUID) (*manufacturingapp.OrderResponse, error)) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	order, err := fn(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Complete finishes production, consuming components and adding output stock
func (h *ManufacturingHandler) Complete(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req manufacturingapp.CompleteRequest
	if !h.BindJSON(c, &req) {
		return
	}
	order, err := h.orderService.Complete(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// GenerateSerialNumbers assigns serial numbers to produced units
func (h *ManufacturingHandler) GenerateSerialNumbers(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req manufacturingapp.SerialNumbersRequest
	if !h.BindJSON(c, &req) {
		return
	}
	order, err := h.orderService.GenerateSerialNumbers(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
