package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/erp/factory/internal/domain/inventory"
	"github.com/erp/factory/internal/infrastructure/persistence/models"
)

// GormInventoryRepository implements inventory.InventoryRepository using GORM
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewGormInventoryRepository creates a new GormInventoryRepository
func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

// FindByID finds a stock row by ID
func (r *GormInventoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.InventoryItem, error) {
	var m models.InventoryItemModel
	if err := conn(ctx, r.db).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindByProductAndWarehouse finds the stock row of a product in a warehouse
func (r *GormInventoryRepository) FindByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) (*inventory.InventoryItem, error) {
	var m models.InventoryItemModel
	if err := conn(ctx, r.db).First(&m, "product_id = ? AND warehouse_id = ?", productID, warehouseID).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindAll returns every stock row
func (r *GormInventoryRepository) FindAll(ctx context.Context) ([]inventory.InventoryItem, error) {
	return r.find(conn(ctx, r.db))
}

// FindByProduct returns the stock rows of a product across warehouses
func (r *GormInventoryRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.InventoryItem, error) {
	return r.find(conn(ctx, r.db).Where("product_id = ?", productID))
}

// FindLowStock returns rows at or below a positive minimum
func (r *GormInventoryRepository) FindLowStock(ctx context.Context) ([]inventory.InventoryItem, error) {
	return r.find(conn(ctx, r.db).Where("min_stock > 0 AND quantity <= min_stock"))
}

func (r *GormInventoryRepository) find(q *gorm.DB) ([]inventory.InventoryItem, error) {
	var rows []models.InventoryItemModel
	if err := q.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]inventory.InventoryItem, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save creates or updates a stock row
func (r *GormInventoryRepository) Save(ctx context.Context, item *inventory.InventoryItem) error {
	return translate(conn(ctx, r.db).Save(models.InventoryItemModelFromDomain(item)).Error)
}

// Delete removes a stock row
func (r *GormInventoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleted(conn(ctx, r.db).Delete(&models.InventoryItemModel{}, "id = ?", id))
}

// GormWarehouseRepository implements inventory.WarehouseRepository using GORM
type GormWarehouseRepository struct {
	db *gorm.DB
}

// NewGormWarehouseRepository creates a new GormWarehouseRepository
func NewGormWarehouseRepository(db *gorm.DB) *GormWarehouseRepository {
	return &GormWarehouseRepository{db: db}
}

// FindByID finds a warehouse by ID
func (r *GormWarehouseRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Warehouse, error) {
	var m models.WarehouseModel
	if err := conn(ctx, r.db).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindByCode finds a warehouse by its code
func (r *GormWarehouseRepository) FindByCode(ctx context.Context, code string) (*inventory.Warehouse, error) {
	var m models.WarehouseModel
	if err := conn(ctx, r.db).First(&m, "code = ?", code).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindAll returns every warehouse ordered by name
func (r *GormWarehouseRepository) FindAll(ctx context.Context) ([]inventory.Warehouse, error) {
	var rows []models.WarehouseModel
	if err := conn(ctx, r.db).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]inventory.Warehouse, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save creates or updates a warehouse
func (r *GormWarehouseRepository) Save(ctx context.Context, warehouse *inventory.Warehouse) error {
	return translate(conn(ctx, r.db).Save(models.WarehouseModelFromDomain(warehouse)).Error)
}

// Delete removes a warehouse
func (r *GormWarehouseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleted(conn(ctx, r.db).Delete(&models.WarehouseModel{}, "id = ?", id))
}

// HasStock reports whether any stock row of the warehouse holds a positive quantity
func (r *GormWarehouseRepository) HasStock(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	err := conn(ctx, r.db).Model(&models.InventoryItemModel{}).
		Where("warehouse_id = ? AND quantity > 0", id).
		Count(&n).Error
	return n > 0, err
}
