package shipping

import (
	"context"

	"github.com/google/uuid"
)

// ShipmentRepository defines persistence for shipments and their items
type ShipmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Shipment, error)
	FindAll(ctx context.Context) ([]Shipment, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]Shipment, error)
	Save(ctx context.Context, shipment *Shipment) error
	Delete(ctx context.Context, id uuid.UUID) error
}
