package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/factory/internal/domain/shared"
)

// InventoryItem represents stock of one product in one warehouse.
// The pair (WarehouseID, ProductID) is unique.
type InventoryItem struct {
	shared.BaseAggregateRoot
	ProductID   uuid.UUID
	WarehouseID uuid.UUID
	Quantity    decimal.Decimal
	MinStock    decimal.Decimal
	MaxStock    decimal.Decimal
}

// NewInventoryItem creates an empty stock row for a product in a warehouse
func NewInventoryItem(productID, warehouseID uuid.UUID) (*InventoryItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	return &InventoryItem{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		WarehouseID:       warehouseID,
		Quantity:          decimal.Zero,
		MinStock:          decimal.Zero,
		MaxStock:          decimal.Zero,
	}, nil
}

// SetQuantity overwrites the on-hand quantity
func (i *InventoryItem) SetQuantity(quantity decimal.Decimal) error {
	if quantity.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	i.Quantity = quantity
	i.Touch()
	return nil
}

// Adjust adds a signed delta to the on-hand quantity
func (i *InventoryItem) Adjust(delta decimal.Decimal) error {
	next := i.Quantity.Add(delta)
	if next.IsNegative() {
		return shared.ErrInsufficientStock
	}
	i.Quantity = next
	i.Touch()
	return nil
}

// SetThresholds sets min and max stock levels. A zero max means unbounded.
func (i *InventoryItem) SetThresholds(minStock, maxStock decimal.Decimal) error {
	if minStock.IsNegative() || maxStock.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Stock thresholds cannot be negative")
	}
	if maxStock.IsPositive() && minStock.GreaterThan(maxStock) {
		return shared.NewDomainError("INVALID_QUANTITY", "Minimum stock cannot exceed maximum stock")
	}
	i.MinStock = minStock
	i.MaxStock = maxStock
	i.Touch()
	return nil
}

// IsLowStock returns true when quantity is at or below the minimum threshold
func (i *InventoryItem) IsLowStock() bool {
	return i.MinStock.IsPositive() && i.Quantity.LessThanOrEqual(i.MinStock)
}

// IsOverstocked returns true when quantity exceeds the maximum threshold
func (i *InventoryItem) IsOverstocked() bool {
	return i.MaxStock.IsPositive() && i.Quantity.GreaterThan(i.MaxStock)
}
