package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/factory/internal/domain/inventory"
)

// WarehouseModel is the persistence model for the Warehouse domain entity.
type WarehouseModel struct {
	AggregateModel
	Code     string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name     string `gorm:"type:varchar(200);not null"`
	Address  string `gorm:"type:text"`
	IsActive bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (WarehouseModel) TableName() string {
	return "warehouses"
}

// ToDomain converts the persistence model to a domain Warehouse entity.
func (m *WarehouseModel) ToDomain() *inventory.Warehouse {
	return &inventory.Warehouse{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		Address:           m.Address,
		IsActive:          m.IsActive,
	}
}

// WarehouseModelFromDomain creates a persistence model from a domain Warehouse entity.
func WarehouseModelFromDomain(w *inventory.Warehouse) *WarehouseModel {
	m := &WarehouseModel{Code: w.Code, Name: w.Name, Address: w.Address, IsActive: w.IsActive}
	m.FromDomainAggregateRoot(w.BaseAggregateRoot)
	return m
}

// InventoryItemModel is the stock of one product in one warehouse.
type InventoryItemModel struct {
	AggregateModel
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_product_warehouse,priority:1"`
	WarehouseID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_product_warehouse,priority:2;index"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MinStock    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MaxStock    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (InventoryItemModel) TableName() string {
	return "inventory_items"
}

// ToDomain converts the persistence model to a domain InventoryItem entity.
func (m *InventoryItemModel) ToDomain() *inventory.InventoryItem {
	return &inventory.InventoryItem{
		BaseAggregateRoot: m.ToAggregateRoot(),
		ProductID:         m.ProductID,
		WarehouseID:       m.WarehouseID,
		Quantity:          m.Quantity,
		MinStock:          m.MinStock,
		MaxStock:          m.MaxStock,
	}
}

// InventoryItemModelFromDomain creates a persistence model from a domain InventoryItem entity.
func InventoryItemModelFromDomain(i *inventory.InventoryItem) *InventoryItemModel {
	m := &InventoryItemModel{
		ProductID:   i.ProductID,
		WarehouseID: i.WarehouseID,
		Quantity:    i.Quantity,
		MinStock:    i.MinStock,
		MaxStock:    i.MaxStock,
	}
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	return m
}
