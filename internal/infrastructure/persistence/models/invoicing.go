package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/factory/internal/domain/invoicing"
)

// InvoiceModel is the persistence model for an invoice header.
type InvoiceModel struct {
	AggregateModel
	ExternalRefColumns
	InvoiceNumber string    `gorm:"type:varchar(100);not null;index"`
	ClientID      uuid.UUID `gorm:"type:uuid;not null;index"`
	IssueDate     *time.Time
	DueDate       *time.Time
	TotalAmount   decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	Currency      string           `gorm:"type:varchar(3);not null;default:'RUB'"`
	Status        invoicing.Status `gorm:"type:varchar(20);not null;default:'draft';index"`
	Comment       string           `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice without items.
func (m *InvoiceModel) ToDomain() *invoicing.Invoice {
	return &invoicing.Invoice{
		BaseAggregateRoot: m.ToAggregateRoot(),
		ExternalRef:       m.Ref(),
		InvoiceNumber:     m.InvoiceNumber,
		ClientID:          m.ClientID,
		IssueDate:         m.IssueDate,
		DueDate:           m.DueDate,
		TotalAmount:       m.TotalAmount,
		Currency:          m.Currency,
		Status:            m.Status,
		Comment:           m.Comment,
	}
}

// InvoiceModelFromDomain creates a persistence model from the invoice header.
func InvoiceModelFromDomain(i *invoicing.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		ExternalRefColumns: ExternalRefFromDomain(i.ExternalRef),
		InvoiceNumber:      i.InvoiceNumber,
		ClientID:           i.ClientID,
		IssueDate:          i.IssueDate,
		DueDate:            i.DueDate,
		TotalAmount:        i.TotalAmount,
		Currency:           i.Currency,
		Status:             i.Status,
		Comment:            i.Comment,
	}
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	return m
}

// InvoiceItemModel is one invoice line.
type InvoiceItemModel struct {
	BaseModel
	ExternalRefColumns
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_invoice_items_line,priority:1"`
	LineNumber  int             `gorm:"not null;uniqueIndex:idx_invoice_items_line,priority:2"`
	ProductID   *uuid.UUID      `gorm:"type:uuid;index"`
	ProductName string          `gorm:"type:varchar(255);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Price       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Total       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	VatRate     decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Unit        string          `gorm:"type:varchar(20)"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// ToDomain converts the persistence model to a domain InvoiceItem.
func (m *InvoiceItemModel) ToDomain() *invoicing.InvoiceItem {
	return &invoicing.InvoiceItem{
		BaseEntity:  m.BaseModel.ToDomain(),
		ExternalRef: m.Ref(),
		InvoiceID:   m.InvoiceID,
		LineNumber:  m.LineNumber,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		Quantity:    m.Quantity,
		Price:       m.Price,
		Total:       m.Total,
		VatRate:     m.VatRate,
		Unit:        m.Unit,
	}
}

// InvoiceItemModelFromDomain creates a persistence model from a domain InvoiceItem.
func InvoiceItemModelFromDomain(it *invoicing.InvoiceItem) *InvoiceItemModel {
	m := &InvoiceItemModel{
		ExternalRefColumns: ExternalRefFromDomain(it.ExternalRef),
		InvoiceID:          it.InvoiceID,
		LineNumber:         it.LineNumber,
		ProductID:          it.ProductID,
		ProductName:        it.ProductName,
		Quantity:           it.Quantity,
		Price:              it.Price,
		Total:              it.Total,
		VatRate:            it.VatRate,
		Unit:               it.Unit,
	}
	m.FromDomainBaseEntity(it.BaseEntity)
	return m
}
