package handler

import (
	"github.com/gin-gonic/gin"

	inventoryapp "github.com/erp/factory/internal/application/inventory"
)

// InventoryHandler handles stock rows
type InventoryHandler struct {
	BaseHandler
	inventoryService *inventoryapp.InventoryService
	tables           *Tables
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventoryService *inventoryapp.InventoryService, tables *Tables) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService, tables: tables}
}

// List returns one page of stock rows
func (h *InventoryHandler) List(c *gin.Context) {
	q, ok := h.tableQuery(c, h.tables.resolver(), inventoryapp.InventoryTableKey)
	if !ok {
		return
	}
	res, err := h.inventoryService.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(&h.BaseHandler, c, res)
}

// Export downloads the stock list as a spreadsheet
func (h *InventoryHandler) Export(c *gin.Context) {
	exportTable(&h.BaseHandler, c, h.tables, h.inventoryService.Table(), h.inventoryService.Export)
}

// LowStock lists rows at or below their minimum
func (h *InventoryHandler) LowStock(c *gin.Context) {
	rows, err := h.inventoryService.LowStock(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// Get returns one stock row
func (h *InventoryHandler) Get(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	row, err := h.inventoryService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, row)
}

// Set creates or overwrites the stock of a product in a warehouse
func (h *InventoryHandler) Set(c *gin.Context) {
	var req inventoryapp.SetStockRequest
	if !h.BindJSON(c, &req) {
		return
	}
	row, err := h.inventoryService.Set(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, row)
}

// Update changes quantity or thresholds
func (h *InventoryHandler) Update(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.UpdateStockRequest
	if !h.BindJSON(c, &req) {
		return
	}
	row, err := h.inventoryService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, row)
}

// Adjust applies a signed quantity delta
func (h *InventoryHandler) Adjust(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}
	row, err := h.inventoryService.Adjust(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, row)
}

// Delete removes a stock row
func (h *InventoryHandler) Delete(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.inventoryService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// WarehouseHandler handles warehouses
type WarehouseHandler struct {
	BaseHandler
	warehouseService *inventoryapp.WarehouseService
}

// NewWarehouseHandler creates a new WarehouseHandler
func NewWarehouseHandler(warehouseService *inventoryapp.WarehouseService) *WarehouseHandler {
	return &WarehouseHandler{warehouseService: warehouseService}
}

// List returns all warehouses
func (h *WarehouseHandler) List(c *gin.Context) {
	list, err := h.warehouseService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, list)
}

// Get returns one warehouse
func (h *WarehouseHandler) Get(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	w, err := h.warehouseService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, w)
}

// Create adds a warehouse
func (h *WarehouseHandler) Create(c *gin.Context) {
	var req inventoryapp.CreateWarehouseRequest
	if !h.BindJSON(c, &req) {
		return
	}
	w, err := h.warehouseService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, w)
}

// Update changes a warehouse
func (h *WarehouseHandler) Update(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.UpdateWarehouseRequest
	if !h.BindJSON(c, &req) {
		return
	}
	w, err := h.warehouseService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, w)
}

// Delete removes a warehouse
func (h *WarehouseHandler) Delete(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.warehouseService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
