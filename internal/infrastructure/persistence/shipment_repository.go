package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/erp/factory/internal/domain/shipping"
	"github.com/erp/factory/internal/infrastructure/persistence/models"
)

// GormShipmentRepository implements shipping.ShipmentRepository using GORM
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewGormShipmentRepository creates a new GormShipmentRepository
func NewGormShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

// FindByID finds a shipment with its items
func (r *GormShipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.Shipment, error) {
	var m models.ShipmentModel
	if err := conn(ctx, r.db).Preload("Items").First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindAll returns every shipment with items, newest first
func (r *GormShipmentRepository) FindAll(ctx context.Context) ([]shipping.Shipment, error) {
	return r.find(conn(ctx, r.db))
}

// FindByOrder returns the shipments of a sales order
func (r *GormShipmentRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]shipping.Shipment, error) {
	return r.find(conn(ctx, r.db).Where("order_id = ?", orderID))
}

func (r *GormShipmentRepository) find(q *gorm.DB) ([]shipping.Shipment, error) {
	var rows []models.ShipmentModel
	if err := q.Preload("Items").Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]shipping.Shipment, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save persists the header and replaces the items
func (r *GormShipmentRepository) Save(ctx context.Context, shipment *shipping.Shipment) error {
	m := models.ShipmentModelFromDomain(shipment)
	return atomic(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(m).Error; err != nil {
			return translate(err)
		}
		if err := tx.Delete(&models.ShipmentItemModel{}, "shipment_id = ?", m.ID).Error; err != nil {
			return err
		}
		if len(m.Items) == 0 {
			return nil
		}
		return tx.Create(&m.Items).Error
	})
}

// Delete removes a shipment and its items
func (r *GormShipmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return atomic(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Delete(&models.ShipmentItemModel{}, "shipment_id = ?", id).Error; err != nil {
			return err
		}
		return deleted(tx.Delete(&models.ShipmentModel{}, "id = ?", id))
	})
}
