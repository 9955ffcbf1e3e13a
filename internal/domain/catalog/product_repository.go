package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/erp/factory/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySKU(ctx context.Context, sku string) (*Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	// FindAll pages, sorts and filters in the database.
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsBySKU(ctx context.Context, sku string) (bool, error)
}

// BOMRepository persists bill-of-materials lines
type BOMRepository interface {
	FindComponents(ctx context.Context, parentID uuid.UUID) ([]ProductComponent, error)
	FindLine(ctx context.Context, parentID, componentID uuid.UUID) (*ProductComponent, error)
	// Graph returns every parent -> component edge.
	Graph(ctx context.Context) (BOMGraph, error)
	Save(ctx context.Context, line *ProductComponent) error
	Delete(ctx context.Context, parentID, componentID uuid.UUID) error
	IsUsedAsComponent(ctx context.Context, productID uuid.UUID) (bool, error)
}
