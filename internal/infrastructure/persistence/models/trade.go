package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/factory/internal/domain/trade"
)

// OrderModel is the persistence model for a sales order header.
type OrderModel struct {
	AggregateModel
	OrderNumber string            `gorm:"type:varchar(50);not null;uniqueIndex"`
	ClientID    *uuid.UUID        `gorm:"type:uuid;index"`
	Status      trade.OrderStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	DueDate     *time.Time
	Notes       string           `gorm:"type:text"`
	TotalAmount decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	Items       []OrderItemModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order; items are included when preloaded.
func (m *OrderModel) ToDomain() *trade.Order {
	o := &trade.Order{
		BaseAggregateRoot: m.ToAggregateRoot(),
		OrderNumber:       m.OrderNumber,
		ClientID:          m.ClientID,
		Status:            m.Status,
		DueDate:           m.DueDate,
		Notes:             m.Notes,
		TotalAmount:       m.TotalAmount,
		Items:             make([]trade.OrderItem, len(m.Items)),
	}
	for i, it := range m.Items {
		o.Items[i] = trade.OrderItem{
			ID:        it.ID,
			OrderID:   it.OrderID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Total:     it.Total,
		}
	}
	return o
}

// OrderModelFromDomain creates a persistence model, items included.
func OrderModelFromDomain(o *trade.Order) *OrderModel {
	m := &OrderModel{
		OrderNumber: o.OrderNumber,
		ClientID:    o.ClientID,
		Status:      o.Status,
		DueDate:     o.DueDate,
		Notes:       o.Notes,
		TotalAmount: o.TotalAmount,
		Items:       make([]OrderItemModel, len(o.Items)),
	}
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	for i, it := range o.Items {
		m.Items[i] = OrderItemModel{
			ID:        it.ID,
			OrderID:   o.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Total:     it.Total,
		}
	}
	return m
}

// OrderItemModel is one sales order line.
type OrderItemModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Total     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}
