package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/erp/factory/internal/domain/procurement"
	"github.com/erp/factory/internal/infrastructure/persistence/models"
)

// GormReceiptRepository implements procurement.ReceiptRepository using GORM
type GormReceiptRepository struct {
	db *gorm.DB
}

// NewGormReceiptRepository creates a new GormReceiptRepository
func NewGormReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{db: db}
}

// FindByID finds a receipt with its items
func (r *GormReceiptRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.SupplierReceipt, error) {
	var m models.SupplierReceiptModel
	if err := conn(ctx, r.db).Preload("Items").First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindAll returns every receipt with items, newest first
func (r *GormReceiptRepository) FindAll(ctx context.Context) ([]procurement.SupplierReceipt, error) {
	var rows []models.SupplierReceiptModel
	if err := conn(ctx, r.db).Preload("Items").Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]procurement.SupplierReceipt, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save persists the header and replaces the items
func (r *GormReceiptRepository) Save(ctx context.Context, receipt *procurement.SupplierReceipt) error {
	m := models.SupplierReceiptModelFromDomain(receipt)
	return atomic(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(m).Error; err != nil {
			return translate(err)
		}
		if err := tx.Delete(&models.ReceiptItemModel{}, "receipt_id = ?", m.ID).Error; err != nil {
			return err
		}
		if len(m.Items) == 0 {
			return nil
		}
		return tx.Create(&m.Items).Error
	})
}

// Delete removes a receipt and its items
func (r *GormReceiptRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return atomic(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Delete(&models.ReceiptItemModel{}, "receipt_id = ?", id).Error; err != nil {
			return err
		}
		return deleted(tx.Delete(&models.SupplierReceiptModel{}, "id = ?", id))
	})
}
