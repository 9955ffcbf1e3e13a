package procurement

import (
	"context"

	"github.com/google/uuid"
)

// ReceiptRepository defines persistence for supplier receipts and their items
type ReceiptRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SupplierReceipt, error)
	FindAll(ctx context.Context) ([]SupplierReceipt, error)
	Save(ctx context.Context, receipt *SupplierReceipt) error
	Delete(ctx context.Context, id uuid.UUID) error
}
