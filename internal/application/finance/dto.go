package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/factory/internal/domain/finance"
)

// CreatePaymentRequest represents a request to register a payment
type CreatePaymentRequest struct {
	OrderID       uuid.UUID       `json:"orderId" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
	Type          string          `json:"type" binding:"required,oneof=prepayment partial full refund"`
	Status        string          `json:"status" binding:"omitempty,oneof=pending completed failed cancelled"`
	PaymentDate   *time.Time      `json:"paymentDate"`
	Correspondent string          `json:"correspondent" binding:"max=300"`
	BankName      string          `json:"bankName" binding:"max=200"`
	BIC           string          `json:"bic" binding:"omitempty,len=9,numeric"`
	Account       string          `json:"account" binding:"omitempty,len=20,numeric"`
	Purpose       string          `json:"purpose" binding:"max=1000"`
	Reference     string          `json:"reference" binding:"max=100"`
}

// UpdatePaymentRequest represents a partial payment update
type UpdatePaymentRequest struct {
	Amount        *decimal.Decimal `json:"amount"`
	Type          *string          `json:"type" binding:"omitempty,oneof=prepayment partial full refund"`
	Status        *string          `json:"status" binding:"omitempty,oneof=pending completed failed cancelled"`
	PaymentDate   *time.Time       `json:"paymentDate"`
	Correspondent *string          `json:"correspondent" binding:"omitempty,max=300"`
	BankName      *string          `json:"bankName" binding:"omitempty,max=200"`
	BIC           *string          `json:"bic"`
	Account       *string          `json:"account"`
	Purpose       *string          `json:"purpose" binding:"omitempty,max=1000"`
	Reference     *string          `json:"reference" binding:"omitempty,max=100"`
}

// PaymentRow is a payment joined with its order number
type PaymentRow struct {
	Payment     *finance.Payment
	OrderNumber string
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	OrderID       uuid.UUID       `json:"orderId"`
	OrderNumber   string          `json:"orderNumber,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Type          string          `json:"type"`
	Status        string          `json:"status"`
	PaymentDate   time.Time       `json:"paymentDate"`
	Correspondent string          `json:"correspondent"`
	BankName      string          `json:"bankName"`
	BIC           string          `json:"bic"`
	Account       string          `json:"account"`
	Purpose       string          `json:"purpose"`
	Reference     string          `json:"reference"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// ToPaymentResponse converts a joined payment row
func ToPaymentResponse(r *PaymentRow) PaymentResponse {
	p := r.Payment
	return PaymentResponse{
		ID:            p.ID,
		OrderID:       p.OrderID,
		OrderNumber:   r.OrderNumber,
		Amount:        p.Amount,
		Type:          string(p.Type),
		Status:        string(p.Status),
		PaymentDate:   p.PaymentDate,
		Correspondent: p.Bank.Correspondent,
		BankName:      p.Bank.BankName,
		BIC:           p.Bank.BIC,
		Account:       p.Bank.Account,
		Purpose:       p.Purpose,
		Reference:     p.Reference,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// OrderPaymentsResponse lists the payments of one order with running totals
type OrderPaymentsResponse struct {
	OrderID     uuid.UUID         `json:"orderId"`
	OrderNumber string            `json:"orderNumber"`
	OrderTotal  decimal.Decimal   `json:"orderTotal"`
	PaidTotal   decimal.Decimal   `json:"paidTotal"`
	Balance     decimal.Decimal   `json:"balance"`
	Payments    []PaymentResponse `json:"payments"`
}
