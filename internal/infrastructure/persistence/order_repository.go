package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/erp/factory/internal/domain/trade"
	"github.com/erp/factory/internal/infrastructure/persistence/models"
)

// GormOrderRepository implements trade.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	var m models.OrderModel
	if err := conn(ctx, r.db).Preload("Items").First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindAll returns every order with its items, newest first
func (r *GormOrderRepository) FindAll(ctx context.Context) ([]trade.Order, error) {
	var rows []models.OrderModel
	if err := conn(ctx, r.db).Preload("Items").Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return ordersToDomain(rows), nil
}

// FindByIDs loads order headers only
func (r *GormOrderRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]trade.Order, error) {
	if len(ids) == 0 {
		return []trade.Order{}, nil
	}
	var rows []models.OrderModel
	if err := conn(ctx, r.db).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return ordersToDomain(rows), nil
}

// OrderedProducts aggregates item quantities per product over orders that are not cancelled
func (r *GormOrderRepository) OrderedProducts(ctx context.Context) ([]trade.ProductDemand, error) {
	var rows []struct {
		ProductID   uuid.UUID
		Quantity    decimal.Decimal
		TotalAmount decimal.Decimal
		OrderCount  int
	}
	err := conn(ctx, r.db).Table("order_items AS i").
		Select("i.product_id, SUM(i.quantity) AS quantity, SUM(i.total) AS total_amount, COUNT(DISTINCT i.order_id) AS order_count").
		Joins("JOIN orders o ON o.id = i.order_id").
		Where("o.status <> ?", trade.OrderStatusCancelled).
		Group("i.product_id").
		Order("quantity DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]trade.ProductDemand, len(rows))
	for i, row := range rows {
		out[i] = trade.ProductDemand{
			ProductID:   row.ProductID,
			Quantity:    row.Quantity,
			TotalAmount: row.TotalAmount,
			OrderCount:  row.OrderCount,
		}
	}
	return out, nil
}

// Save persists the header and replaces the items
func (r *GormOrderRepository) Save(ctx context.Context, order *trade.Order) error {
	m := models.OrderModelFromDomain(order)
	return atomic(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(m).Error; err != nil {
			return translate(err)
		}
		if err := tx.Delete(&models.OrderItemModel{}, "order_id = ?", m.ID).Error; err != nil {
			return err
		}
		if len(m.Items) == 0 {
			return nil
		}
		return tx.Create(&m.Items).Error
	})
}

// Delete removes an order and its items
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return atomic(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Delete(&models.OrderItemModel{}, "order_id = ?", id).Error; err != nil {
			return err
		}
		return deleted(tx.Delete(&models.OrderModel{}, "id = ?", id))
	})
}

// ExistsByProduct reports whether any order line references the product
func (r *GormOrderRepository) ExistsByProduct(ctx context.Context, productID uuid.UUID) (bool, error) {
	var n int64
	err := conn(ctx, r.db).Model(&models.OrderItemModel{}).Where("product_id = ?", productID).Count(&n).Error
	return n > 0, err
}

func ordersToDomain(rows []models.OrderModel) []trade.Order {
	out := make([]trade.Order, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}
