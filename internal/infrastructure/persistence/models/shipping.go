package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/factory/internal/domain/shipping"
)

// ShipmentModel is the persistence model for a shipment header.
type ShipmentModel struct {
	AggregateModel
	ShipmentNumber string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	OrderID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Carrier        string          `gorm:"type:varchar(100)"`
	TrackingNumber string          `gorm:"type:varchar(100)"`
	Weight         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Length         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Width          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Height         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status         shipping.Status `gorm:"type:varchar(20);not null;default:'preparing';index"`
	ShippedAt      *time.Time
	DeliveredAt    *time.Time
	Notes          string              `gorm:"type:text"`
	Items          []ShipmentItemModel `gorm:"foreignKey:ShipmentID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (ShipmentModel) TableName() string {
	return "shipments"
}

// ShipmentItemModel is one shipped product line.
type ShipmentItemModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ShipmentID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	SerialNumbers []string        `gorm:"type:text;serializer:json"`
}

// TableName returns the table name for GORM
func (ShipmentItemModel) TableName() string {
	return "shipment_items"
}

// ToDomain converts the persistence model to a domain Shipment; items are included when preloaded.
func (m *ShipmentModel) ToDomain() *shipping.Shipment {
	s := &shipping.Shipment{
		BaseAggregateRoot: m.ToAggregateRoot(),
		ShipmentNumber:    m.ShipmentNumber,
		OrderID:           m.OrderID,
		Carrier:           m.Carrier,
		TrackingNumber:    m.TrackingNumber,
		Weight:            m.Weight,
		Dimensions:        shipping.Dimensions{Length: m.Length, Width: m.Width, Height: m.Height},
		Status:            m.Status,
		ShippedAt:         m.ShippedAt,
		DeliveredAt:       m.DeliveredAt,
		Notes:             m.Notes,
		Items:             make([]shipping.ShipmentItem, len(m.Items)),
	}
	for i, it := range m.Items {
		s.Items[i] = shipping.ShipmentItem{
			ID:            it.ID,
			ShipmentID:    it.ShipmentID,
			ProductID:     it.ProductID,
			Quantity:      it.Quantity,
			SerialNumbers: it.SerialNumbers,
		}
	}
	return s
}

// ShipmentModelFromDomain creates a persistence model, items included.
func ShipmentModelFromDomain(s *shipping.Shipment) *ShipmentModel {
	m := &ShipmentModel{
		ShipmentNumber: s.ShipmentNumber,
		OrderID:        s.OrderID,
		Carrier:        s.Carrier,
		TrackingNumber: s.TrackingNumber,
		Weight:         s.Weight,
		Length:         s.Dimensions.Length,
		Width:          s.Dimensions.Width,
		Height:         s.Dimensions.Height,
		Status:         s.Status,
		ShippedAt:      s.ShippedAt,
		DeliveredAt:    s.DeliveredAt,
		Notes:          s.Notes,
		Items:          make([]ShipmentItemModel, len(s.Items)),
	}
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	for i, it := range s.Items {
		m.Items[i] = ShipmentItemModel{
			ID:            it.ID,
			ShipmentID:    s.ID,
			ProductID:     it.ProductID,
			Quantity:      it.Quantity,
			SerialNumbers: it.SerialNumbers,
		}
	}
	return m
}
