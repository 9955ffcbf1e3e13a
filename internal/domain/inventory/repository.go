package inventory

import (
	"context"

	"github.com/google/uuid"
)

// InventoryRepository defines persistence for stock rows
type InventoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*InventoryItem, error)
	FindByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) (*InventoryItem, error)
	FindAll(ctx context.Context) ([]InventoryItem, error)
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]InventoryItem, error)
	FindLowStock(ctx context.Context) ([]InventoryItem, error)
	Save(ctx context.Context, item *InventoryItem) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// WarehouseRepository defines persistence for warehouses
type WarehouseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Warehouse, error)
	FindByCode(ctx context.Context, code string) (*Warehouse, error)
	FindAll(ctx context.Context) ([]Warehouse, error)
	Save(ctx context.Context, warehouse *Warehouse) error
	Delete(ctx context.Context, id uuid.UUID) error
	HasStock(ctx context.Context, id uuid.UUID) (bool, error)
}
