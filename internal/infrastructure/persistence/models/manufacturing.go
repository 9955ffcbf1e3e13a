package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/factory/internal/domain/manufacturing"
)

// ManufacturingOrderModel is the persistence model for a manufacturing order.
type ManufacturingOrderModel struct {
	AggregateModel
	OrderNumber      string                 `gorm:"type:varchar(50);not null;uniqueIndex"`
	ProductID        uuid.UUID              `gorm:"type:uuid;not null;index"`
	PlannedQuantity  int                    `gorm:"not null"`
	ProducedQuantity int                    `gorm:"not null;default:0"`
	StockedQuantity  int                    `gorm:"not null;default:0"`
	Status           manufacturing.Status   `gorm:"type:varchar(20);not null;default:'pending';index"`
	Priority         manufacturing.Priority `gorm:"type:varchar(20);not null;default:'normal'"`
	MaterialCost     decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	LaborCost        decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	OverheadCost     decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	SourceOrderID    *uuid.UUID             `gorm:"type:uuid;index"`
	AssignedWorkerID *uuid.UUID             `gorm:"type:uuid;index"`
	WarehouseID      *uuid.UUID             `gorm:"type:uuid"`
	QualityRating    *int
	SerialNumbers    []string `gorm:"type:text;serializer:json"`
	PlannedStart     *time.Time
	PlannedEnd       *time.Time
	StartedAt        *time.Time
	PausedAt         *time.Time
	CompletedAt      *time.Time
	Notes            string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ManufacturingOrderModel) TableName() string {
	return "manufacturing_orders"
}

// ToDomain converts the persistence model to a domain manufacturing Order.
func (m *ManufacturingOrderModel) ToDomain() *manufacturing.Order {
	return &manufacturing.Order{
		BaseAggregateRoot: m.ToAggregateRoot(),
		OrderNumber:       m.OrderNumber,
		ProductID:         m.ProductID,
		PlannedQuantity:   m.PlannedQuantity,
		ProducedQuantity:  m.ProducedQuantity,
		StockedQuantity:   m.StockedQuantity,
		Status:            m.Status,
		Priority:          m.Priority,
		MaterialCost:      m.MaterialCost,
		LaborCost:         m.LaborCost,
		OverheadCost:      m.OverheadCost,
		SourceOrderID:     m.SourceOrderID,
		AssignedWorkerID:  m.AssignedWorkerID,
		WarehouseID:       m.WarehouseID,
		QualityRating:     m.QualityRating,
		SerialNumbers:     m.SerialNumbers,
		PlannedStart:      m.PlannedStart,
		PlannedEnd:        m.PlannedEnd,
		StartedAt:         m.StartedAt,
		PausedAt:          m.PausedAt,
		CompletedAt:       m.CompletedAt,
		Notes:             m.Notes,
	}
}

// ManufacturingOrderModelFromDomain creates a persistence model from a manufacturing Order.
func ManufacturingOrderModelFromDomain(o *manufacturing.Order) *ManufacturingOrderModel {
	m := &ManufacturingOrderModel{
		OrderNumber:      o.OrderNumber,
		ProductID:        o.ProductID,
		PlannedQuantity:  o.PlannedQuantity,
		ProducedQuantity: o.ProducedQuantity,
		StockedQuantity:  o.StockedQuantity,
		Status:           o.Status,
		Priority:         o.Priority,
		MaterialCost:     o.MaterialCost,
		LaborCost:        o.LaborCost,
		OverheadCost:     o.OverheadCost,
		SourceOrderID:    o.SourceOrderID,
		AssignedWorkerID: o.AssignedWorkerID,
		WarehouseID:      o.WarehouseID,
		QualityRating:    o.QualityRating,
		SerialNumbers:    o.SerialNumbers,
		PlannedStart:     o.PlannedStart,
		PlannedEnd:       o.PlannedEnd,
		StartedAt:        o.StartedAt,
		PausedAt:         o.PausedAt,
		CompletedAt:      o.CompletedAt,
		Notes:            o.Notes,
	}
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	return m
}
