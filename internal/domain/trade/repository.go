package trade

import (
	"context"

	"github.com/google/uuid"
)

// OrderRepository defines persistence for orders and their items
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindAll(ctx context.Context) ([]Order, error)
	// FindByIDs loads headers only.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Order, error)
	// OrderedProducts aggregates item quantities per product over orders that are not cancelled.
	OrderedProducts(ctx context.Context) ([]ProductDemand, error)
	// Save persists the order header and replaces its items.
	Save(ctx context.Context, order *Order) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByProduct(ctx context.Context, productID uuid.UUID) (bool, error)
}
