package handler

import (
	"github.com/gin-gonic/gin"

	shippingapp "github.com/erp/factory/internal/application/shipping"
)

// ShipmentHandler handles shipments
type ShipmentHandler struct {
	BaseHandler
	shipmentService *shippingapp.ShipmentService
	tables          *Tables
}

// NewShipmentHandler creates a new ShipmentHandler
func NewShipmentHandler(shipmentService *shippingapp.ShipmentService, tables *Tables) *ShipmentHandler {
	return &ShipmentHandler{shipmentService: shipmentService, tables: tables}
}

// List returns one page of shipments
func (h *ShipmentHandler) List(c *gin.Context) {
	q, ok := h.tableQuery(c, h.tables.resolver(), shippingapp.ShipmentsTableKey)
	if !ok {
		return
	}
	res, err := h.shipmentService.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(&h.BaseHandler, c, res)
}

// Export downloads the shipment list as a spreadsheet
func (h *ShipmentHandler) Export(c *gin.Context) {
	exportTable(&h.BaseHandler, c, h.tables, h.shipmentService.Table(), h.shipmentService.Export)
}

// Get returns one shipment
func (h *ShipmentHandler) Get(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	s, err := h.shipmentService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, s)
}

// Create schedules a shipment
func (h *ShipmentHandler) Create(c *gin.Context) {
	var req shippingapp.CreateShipmentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	s, err := h.shipmentService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, s)
}

// Update changes a shipment
func (h *ShipmentHandler) Update(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req shippingapp.UpdateShipmentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	s, err := h.shipmentService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, s)
}

// UpdateStatus moves a shipment to another status
func (h *ShipmentHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req shippingapp.UpdateStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	s, err := h.shipmentService.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, s)
}

// Delete removes a shipment
func (h *ShipmentHandler) Delete(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.shipmentService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
