package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/factory/internal/domain/inventory"
)

// CreateWarehouseRequest represents a request to create a warehouse
type CreateWarehouseRequest struct {
	Code    string `json:"code" binding:"required,min=1,max=50"`
	Name    string `json:"name" binding:"required,min=1,max=200"`
	Address string `json:"address" binding:"max=500"`
}

// UpdateWarehouseRequest represents a partial warehouse update
type UpdateWarehouseRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=200"`
	Address  *string `json:"address" binding:"omitempty,max=500"`
	IsActive *bool   `json:"isActive"`
}

// WarehouseResponse represents a warehouse in API responses
type WarehouseResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ToWarehouseResponse converts a domain Warehouse
func ToWarehouseResponse(w *inventory.Warehouse) WarehouseResponse {
	return WarehouseResponse{
		ID:        w.ID,
		Code:      w.Code,
		Name:      w.Name,
		Address:   w.Address,
		IsActive:  w.IsActive,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

// SetStockRequest creates or overwrites the stock row of a product in a warehouse
type SetStockRequest struct {
	ProductID   uuid.UUID        `json:"productId" binding:"required"`
	WarehouseID uuid.UUID        `json:"warehouseId" binding:"required"`
	Quantity    decimal.Decimal  `json:"quantity"`
	MinStock    *decimal.Decimal `json:"minStock"`
	MaxStock    *decimal.Decimal `json:"maxStock"`
}

// UpdateStockRequest changes quantity or thresholds of a stock row
type UpdateStockRequest struct {
	Quantity *decimal.Decimal `json:"quantity"`
	MinStock *decimal.Decimal `json:"minStock"`
	MaxStock *decimal.Decimal `json:"maxStock"`
}

// AdjustStockRequest adds a signed delta to a stock row
type AdjustStockRequest struct {
	Delta  decimal.Decimal `json:"delta"`
	Reason string          `json:"reason" binding:"max=500"`
}

// StockRow is an inventory item joined with its product and warehouse
type StockRow struct {
	Item          *inventory.InventoryItem
	ProductSKU    string
	ProductName   string
	WarehouseCode string
	WarehouseName string
}

// StockResponse represents an inventory row in API responses
type StockResponse struct {
	ID            uuid.UUID       `json:"id"`
	ProductID     uuid.UUID       `json:"productId"`
	ProductSKU    string          `json:"productSku"`
	ProductName   string          `json:"productName"`
	WarehouseID   uuid.UUID       `json:"warehouseId"`
	WarehouseCode string          `json:"warehouseCode"`
	WarehouseName string          `json:"warehouseName"`
	Quantity      decimal.Decimal `json:"quantity"`
	MinStock      decimal.Decimal `json:"minStock"`
	MaxStock      decimal.Decimal `json:"maxStock"`
	IsLowStock    bool            `json:"isLowStock"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// ToStockResponse converts a joined stock row
func ToStockResponse(r *StockRow) StockResponse {
	return StockResponse{
		ID:            r.Item.ID,
		ProductID:     r.Item.ProductID,
		ProductSKU:    r.ProductSKU,
		ProductName:   r.ProductName,
		WarehouseID:   r.Item.WarehouseID,
		WarehouseCode: r.WarehouseCode,
		WarehouseName: r.WarehouseName,
		Quantity:      r.Item.Quantity,
		MinStock:      r.Item.MinStock,
		MaxStock:      r.Item.MaxStock,
		IsLowStock:    r.Item.IsLowStock(),
		UpdatedAt:     r.Item.UpdatedAt,
	}
}
