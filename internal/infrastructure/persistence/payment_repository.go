package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/erp/factory/internal/domain/finance"
	"github.com/erp/factory/internal/infrastructure/persistence/models"
)

// GormPaymentRepository implements finance.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Payment, error) {
	var m models.PaymentModel
	if err := conn(ctx, r.db).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindAll returns every payment, latest payment date first
func (r *GormPaymentRepository) FindAll(ctx context.Context) ([]finance.Payment, error) {
	return r.find(conn(ctx, r.db))
}

// FindByOrder returns the payments of an order
func (r *GormPaymentRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]finance.Payment, error) {
	return r.find(conn(ctx, r.db).Where("order_id = ?", orderID))
}

func (r *GormPaymentRepository) find(q *gorm.DB) ([]finance.Payment, error) {
	var rows []models.PaymentModel
	if err := q.Order("payment_date DESC, created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]finance.Payment, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save creates or updates a payment
func (r *GormPaymentRepository) Save(ctx context.Context, payment *finance.Payment) error {
	return translate(conn(ctx, r.db).Save(models.PaymentModelFromDomain(payment)).Error)
}

// Delete removes a payment
func (r *GormPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleted(conn(ctx, r.db).Delete(&models.PaymentModel{}, "id = ?", id))
}
