package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/erp/factory/internal/domain/manufacturing"
	"github.com/erp/factory/internal/infrastructure/persistence/models"
)

// GormManufacturingOrderRepository implements manufacturing.OrderRepository using GORM
type GormManufacturingOrderRepository struct {
	db *gorm.DB
}

// NewGormManufacturingOrderRepository creates a new GormManufacturingOrderRepository
func NewGormManufacturingOrderRepository(db *gorm.DB) *GormManufacturingOrderRepository {
	return &GormManufacturingOrderRepository{db: db}
}

// FindByID finds a manufacturing order by ID
func (r *GormManufacturingOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*manufacturing.Order, error) {
	var m models.ManufacturingOrderModel
	if err := conn(ctx, r.db).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindAll returns every manufacturing order, newest first
func (r *GormManufacturingOrderRepository) FindAll(ctx context.Context) ([]manufacturing.Order, error) {
	return r.find(conn(ctx, r.db))
}

// FindBySourceOrder returns the manufacturing orders raised for a sales order
func (r *GormManufacturingOrderRepository) FindBySourceOrder(ctx context.Context, sourceOrderID uuid.UUID) ([]manufacturing.Order, error) {
	return r.find(conn(ctx, r.db).Where("source_order_id = ?", sourceOrderID))
}

func (r *GormManufacturingOrderRepository) find(q *gorm.DB) ([]manufacturing.Order, error) {
	var rows []models.ManufacturingOrderModel
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]manufacturing.Order, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save creates or updates a manufacturing order
func (r *GormManufacturingOrderRepository) Save(ctx context.Context, order *manufacturing.Order) error {
	return translate(conn(ctx, r.db).Save(models.ManufacturingOrderModelFromDomain(order)).Error)
}

// Delete removes a manufacturing order
func (r *GormManufacturingOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleted(conn(ctx, r.db).Delete(&models.ManufacturingOrderModel{}, "id = ?", id))
}
