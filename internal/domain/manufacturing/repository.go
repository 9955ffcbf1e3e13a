package manufacturing

import (
	"context"

	"github.com/google/uuid"
)

// OrderRepository defines persistence for manufacturing orders
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindAll(ctx context.Context) ([]Order, error)
	FindBySourceOrder(ctx context.Context, sourceOrderID uuid.UUID) ([]Order, error)
	Save(ctx context.Context, order *Order) error
	Delete(ctx context.Context, id uuid.UUID) error
}
