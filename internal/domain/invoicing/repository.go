package invoicing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/erp/factory/internal/domain/shared"
)

// InvoiceRepository defines persistence for invoices
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByExternalRef(ctx context.Context, ref shared.ExternalRef) (*Invoice, error)
	// FindByNumberForSource returns the oldest invoice with the number that is
	// either unlinked or linked to source.
	FindByNumberForSource(ctx context.Context, number string, source shared.Source) (*Invoice, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Invoice, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	CountBySource(ctx context.Context) (map[shared.Source]int64, error)
	LastSyncedAt(ctx context.Context) (*time.Time, error)
	// Save persists the invoice header only; items have their own repository.
	Save(ctx context.Context, invoice *Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// InvoiceItemRepository defines persistence for invoice lines
type InvoiceItemRepository interface {
	FindByExternalRef(ctx context.Context, ref shared.ExternalRef) (*InvoiceItem, error)
	FindByInvoiceAndLine(ctx context.Context, invoiceID uuid.UUID, lineNumber int) (*InvoiceItem, error)
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]InvoiceItem, error)
	CountBySource(ctx context.Context) (map[shared.Source]int64, error)
	Save(ctx context.Context, item *InvoiceItem) error
}
