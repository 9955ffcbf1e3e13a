package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/erp/factory/internal/domain/invoicing"
	"github.com/erp/factory/internal/domain/shared"
	"github.com/erp/factory/internal/infrastructure/persistence/models"
)

var invoiceColumns = columnSet{
	columns: map[string]column{
		"invoiceNumber": {"invoice_number", kindText},
		"issueDate":     {"issue_date", kindValue},
		"dueDate":       {"due_date", kindValue},
		"totalAmount":   {"total_amount", kindValue},
		"currency":      {"currency", kindExact},
		"status":        {"status", kindExact},
		"source":        {"source", kindExact},
	},
	search:      []string{"invoice_number", "currency", "status", "source", "comment"},
	defaultSort: "issueDate",
	defaultDir:  "desc",
}

// GormInvoiceRepository implements invoicing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice header by ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.Invoice, error) {
	var m models.InvoiceModel
	if err := conn(ctx, r.db).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindByExternalRef finds the invoice linked to an external record
func (r *GormInvoiceRepository) FindByExternalRef(ctx context.Context, ref shared.ExternalRef) (*invoicing.Invoice, error) {
	var m models.InvoiceModel
	err := conn(ctx, r.db).First(&m, "external_id = ? AND source = ?", ref.ExternalID, ref.Source).Error
	if err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindByNumberForSource returns the oldest invoice with the number that is
// unlinked or already linked to source
func (r *GormInvoiceRepository) FindByNumberForSource(ctx context.Context, number string, source shared.Source) (*invoicing.Invoice, error) {
	var m models.InvoiceModel
	err := conn(ctx, r.db).
		Where("invoice_number = ? AND (external_id = '' OR source = ?)", number, source).
		Order("created_at ASC, id ASC").
		First(&m).Error
	if err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindAll returns one page of invoice headers
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]invoicing.Invoice, error) {
	q := invoiceColumns.where(conn(ctx, r.db).Model(&models.InvoiceModel{}), filter)
	var rows []models.InvoiceModel
	if err := invoiceColumns.page(q, filter).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]invoicing.Invoice, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Count counts the invoices matching the filter
func (r *GormInvoiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var n int64
	err := invoiceColumns.where(conn(ctx, r.db).Model(&models.InvoiceModel{}), filter).Count(&n).Error
	return n, err
}

// CountBySource counts invoices per source
func (r *GormInvoiceRepository) CountBySource(ctx context.Context) (map[shared.Source]int64, error) {
	return countBySource(conn(ctx, r.db), &models.InvoiceModel{})
}

// LastSyncedAt returns the latest update time of an invoice that came from
// an external system, or nil when none did.
func (r *GormInvoiceRepository) LastSyncedAt(ctx context.Context) (*time.Time, error) {
	var m models.InvoiceModel
	err := conn(ctx, r.db).Select("updated_at").Where("source <> ?", shared.SourceManual).
		Order("updated_at DESC").First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t := m.UpdatedAt
	return &t, nil
}

// Save creates or updates the invoice header
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *invoicing.Invoice) error {
	return translate(conn(ctx, r.db).Save(models.InvoiceModelFromDomain(invoice)).Error)
}

// Delete removes an invoice and its lines
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return atomic(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Delete(&models.InvoiceItemModel{}, "invoice_id = ?", id).Error; err != nil {
			return err
		}
		return deleted(tx.Delete(&models.InvoiceModel{}, "id = ?", id))
	})
}

// GormInvoiceItemRepository implements invoicing.InvoiceItemRepository using GORM
type GormInvoiceItemRepository struct {
	db *gorm.DB
}

// NewGormInvoiceItemRepository creates a new GormInvoiceItemRepository
func NewGormInvoiceItemRepository(db *gorm.DB) *GormInvoiceItemRepository {
	return &GormInvoiceItemRepository{db: db}
}

func (r *GormInvoiceItemRepository) FindByExternalRef(ctx context.Context, ref shared.ExternalRef) (*invoicing.InvoiceItem, error) {
	var m models.InvoiceItemModel
	err := conn(ctx, r.db).First(&m, "external_id = ? AND source = ?", ref.ExternalID, ref.Source).Error
	if err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

func (r *GormInvoiceItemRepository) FindByInvoiceAndLine(ctx context.Context, invoiceID uuid.UUID, lineNumber int) (*invoicing.InvoiceItem, error) {
	var m models.InvoiceItemModel
	err := conn(ctx, r.db).First(&m, "invoice_id = ? AND line_number = ?", invoiceID, lineNumber).Error
	if err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindByInvoice lists the lines of an invoice by line number
func (r *GormInvoiceItemRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]invoicing.InvoiceItem, error) {
	var rows []models.InvoiceItemModel
	if err := conn(ctx, r.db).Where("invoice_id = ?", invoiceID).Order("line_number ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]invoicing.InvoiceItem, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

func (r *GormInvoiceItemRepository) CountBySource(ctx context.Context) (map[shared.Source]int64, error) {
	return countBySource(conn(ctx, r.db), &models.InvoiceItemModel{})
}

func (r *GormInvoiceItemRepository) Save(ctx context.Context, item *invoicing.InvoiceItem) error {
	return translate(conn(ctx, r.db).Save(models.InvoiceItemModelFromDomain(item)).Error)
}
