package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/factory/internal/domain/procurement"
)

// SupplierReceiptModel is the persistence model for a supplier receipt header.
type SupplierReceiptModel struct {
	AggregateModel
	ReceiptNumber string                    `gorm:"type:varchar(50);not null;uniqueIndex"`
	SupplierID    uuid.UUID                 `gorm:"type:uuid;not null;index"`
	WarehouseID   uuid.UUID                 `gorm:"type:uuid;not null"`
	Status        procurement.ReceiptStatus `gorm:"type:varchar(20);not null;default:'draft'"`
	DocumentDate  *time.Time
	ReceivedAt    *time.Time
	Notes         string             `gorm:"type:text"`
	TotalAmount   decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0"`
	Items         []ReceiptItemModel `gorm:"foreignKey:ReceiptID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (SupplierReceiptModel) TableName() string {
	return "supplier_receipts"
}

// ReceiptItemModel is one received component line.
type ReceiptItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ReceiptID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ComponentID uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (ReceiptItemModel) TableName() string {
	return "supplier_receipt_items"
}

// ToDomain converts the persistence model to a domain SupplierReceipt.
func (m *SupplierReceiptModel) ToDomain() *procurement.SupplierReceipt {
	r := &procurement.SupplierReceipt{
		BaseAggregateRoot: m.ToAggregateRoot(),
		ReceiptNumber:     m.ReceiptNumber,
		SupplierID:        m.SupplierID,
		WarehouseID:       m.WarehouseID,
		Status:            m.Status,
		DocumentDate:      m.DocumentDate,
		ReceivedAt:        m.ReceivedAt,
		Notes:             m.Notes,
		TotalAmount:       m.TotalAmount,
		Items:             make([]procurement.ReceiptItem, len(m.Items)),
	}
	for i, it := range m.Items {
		r.Items[i] = procurement.ReceiptItem{
			ID:          it.ID,
			ReceiptID:   it.ReceiptID,
			ComponentID: it.ComponentID,
			Quantity:    it.Quantity,
			UnitCost:    it.UnitCost,
		}
	}
	return r
}

// SupplierReceiptModelFromDomain creates a persistence model, items included.
func SupplierReceiptModelFromDomain(r *procurement.SupplierReceipt) *SupplierReceiptModel {
	m := &SupplierReceiptModel{
		ReceiptNumber: r.ReceiptNumber,
		SupplierID:    r.SupplierID,
		WarehouseID:   r.WarehouseID,
		Status:        r.Status,
		DocumentDate:  r.DocumentDate,
		ReceivedAt:    r.ReceivedAt,
		Notes:         r.Notes,
		TotalAmount:   r.TotalAmount,
		Items:         make([]ReceiptItemModel, len(r.Items)),
	}
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	for i, it := range r.Items {
		m.Items[i] = ReceiptItemModel{
			ID:          it.ID,
			ReceiptID:   r.ID,
			ComponentID: it.ComponentID,
			Quantity:    it.Quantity,
			UnitCost:    it.UnitCost,
		}
	}
	return m
}
