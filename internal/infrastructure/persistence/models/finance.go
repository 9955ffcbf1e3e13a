package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/factory/internal/domain/finance"
)

// PaymentModel is the persistence model for the Payment domain entity.
type PaymentModel struct {
	AggregateModel
	OrderID           uuid.UUID             `gorm:"type:uuid;not null;index"`
	Amount            decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	Type              finance.PaymentType   `gorm:"type:varchar(20);not null"`
	Status            finance.PaymentStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	PaymentDate       time.Time             `gorm:"not null"`
	BankCorrespondent string                `gorm:"type:varchar(200)"`
	BankName          string                `gorm:"type:varchar(200)"`
	BankBIC           string                `gorm:"column:bank_bic;type:varchar(20)"`
	BankAccount       string                `gorm:"type:varchar(34)"`
	Purpose           string                `gorm:"type:text"`
	Reference         string                `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *finance.Payment {
	return &finance.Payment{
		BaseAggregateRoot: m.ToAggregateRoot(),
		OrderID:           m.OrderID,
		Amount:            m.Amount,
		Type:              m.Type,
		Status:            m.Status,
		PaymentDate:       m.PaymentDate,
		Bank: finance.BankDetails{
			Correspondent: m.BankCorrespondent,
			BankName:      m.BankName,
			BIC:           m.BankBIC,
			Account:       m.BankAccount,
		},
		Purpose:   m.Purpose,
		Reference: m.Reference,
	}
}

// PaymentModelFromDomain creates a persistence model from a domain Payment entity.
func PaymentModelFromDomain(p *finance.Payment) *PaymentModel {
	m := &PaymentModel{
		OrderID:           p.OrderID,
		Amount:            p.Amount,
		Type:              p.Type,
		Status:            p.Status,
		PaymentDate:       p.PaymentDate,
		BankCorrespondent: p.Bank.Correspondent,
		BankName:          p.Bank.BankName,
		BankBIC:           p.Bank.BIC,
		BankAccount:       p.Bank.Account,
		Purpose:           p.Purpose,
		Reference:         p.Reference,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}
