package finance

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/factory/internal/domain/shared"
)

// PaymentType classifies a payment against an order
type PaymentType string

const (
	PaymentTypePrepayment PaymentType = "prepayment"
	PaymentTypePartial    PaymentType = "partial"
	PaymentTypeFull       PaymentType = "full"
	PaymentTypeRefund     PaymentType = "refund"
)

// IsValid checks if the type is known
func (t PaymentType) IsValid() bool {
	switch t {
	case PaymentTypePrepayment, PaymentTypePartial, PaymentTypeFull, PaymentTypeRefund:
		return true
	}
	return false
}

// PaymentStatus represents the processing status of a payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// IsValid checks if the status is known
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled:
		return true
	}
	return false
}

// BankDetails describes the counterparty of a bank transfer
type BankDetails struct {
	Correspondent string
	BankName      string
	BIC           string
	Account       string
}

var (
	bicPattern     = regexp.MustCompile(`^\d{9}$`)
	accountPattern = regexp.MustCompile(`^\d{20}$`)
)

// Validate checks BIC and account formats when they are given
func (b BankDetails) Validate() error {
	if b.BIC != "" && !bicPattern.MatchString(b.BIC) {
		return shared.NewDomainError("INVALID_BIC", "BIC must be 9 digits")
	}
	if b.Account != "" && !accountPattern.MatchString(b.Account) {
		return shared.NewDomainError("INVALID_ACCOUNT", "Account number must be 20 digits")
	}
	return nil
}

// Payment is money received or refunded for an order
type Payment struct {
	shared.BaseAggregateRoot
	OrderID     uuid.UUID
	Amount      decimal.Decimal
	Type        PaymentType
	Status      PaymentStatus
	PaymentDate time.Time
	Bank        BankDetails
	Purpose     string
	Reference   string
}

// NewPayment creates a pending payment
func NewPayment(orderID uuid.UUID, amount decimal.Decimal, paymentType PaymentType, date time.Time) (*Payment, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if !paymentType.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_TYPE", "Invalid payment type")
	}
	if date.IsZero() {
		date = shared.Now()
	}
	return &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		Amount:            amount,
		Type:              paymentType,
		Status:            PaymentStatusPending,
		PaymentDate:       date,
	}, nil
}

// SetAmount changes the amount
func (p *Payment) SetAmount(amount decimal.Decimal) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	p.Amount = amount
	p.Touch()
	return nil
}

// SetType changes the payment type
func (p *Payment) SetType(t PaymentType) error {
	if !t.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_TYPE", "Invalid payment type")
	}
	p.Type = t
	p.Touch()
	return nil
}

// SetStatus writes the payment status
func (p *Payment) SetStatus(s PaymentStatus) error {
	if !s.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid payment status")
	}
	p.Status = s
	p.Touch()
	return nil
}

// SetDate sets the payment date
func (p *Payment) SetDate(date time.Time) {
	p.PaymentDate = date
	p.Touch()
}

// SetBankDetails sets the counterparty bank data
func (p *Payment) SetBankDetails(b BankDetails) error {
	b.BIC = strings.TrimSpace(b.BIC)
	b.Account = strings.TrimSpace(b.Account)
	if err := b.Validate(); err != nil {
		return err
	}
	p.Bank = b
	p.Touch()
	return nil
}

// SetPurpose sets payment purpose and reference
func (p *Payment) SetPurpose(purpose, reference string) {
	p.Purpose = purpose
	p.Reference = reference
	p.Touch()
}

// SignedAmount is negative for refunds
func (p *Payment) SignedAmount() decimal.Decimal {
	if p.Type == PaymentTypeRefund {
		return p.Amount.Neg()
	}
	return p.Amount
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	return nil
}

// PaidTotal sums completed payments, counting refunds negatively
func PaidTotal(payments []Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		if p.Status == PaymentStatusCompleted {
			total = total.Add(p.SignedAmount())
		}
	}
	return total
}
