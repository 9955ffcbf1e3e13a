package invoicing

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/factory/internal/domain/shared"
)

// Status represents the payment status of an invoice
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusOverdue, StatusCancelled:
		return true
	}
	return false
}

// Invoice is a bill issued to a client, usually imported from an accounting system
type Invoice struct {
	shared.BaseAggregateRoot
	shared.ExternalRef
	InvoiceNumber string
	ClientID      uuid.UUID
	IssueDate     *time.Time
	DueDate       *time.Time
	TotalAmount   decimal.Decimal
	Currency      string
	Status        Status
	Comment       string
	Items         []InvoiceItem
}

// NewInvoice creates a draft invoice for a client
func NewInvoice(number string, clientID uuid.UUID, ref shared.ExternalRef) (*Invoice, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if !ref.Source.IsValid() {
		ref.Source = shared.SourceManual
	}
	return &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ExternalRef:       ref,
		InvoiceNumber:     number,
		ClientID:          clientID,
		TotalAmount:       decimal.Zero,
		Currency:          "RUB",
		Status:            StatusDraft,
	}, nil
}

// SetNumber changes the invoice number
func (i *Invoice) SetNumber(number string) error {
	number = strings.TrimSpace(number)
	if number == "" {
		return shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	i.InvoiceNumber = number
	i.Touch()
	return nil
}

// SetClient moves the invoice to another client
func (i *Invoice) SetClient(clientID uuid.UUID) {
	i.ClientID = clientID
	i.Touch()
}

// SetDates sets issue and due dates
func (i *Invoice) SetDates(issue, due *time.Time) {
	if issue != nil {
		i.IssueDate = issue
	}
	if due != nil {
		i.DueDate = due
	}
	i.Touch()
}

// SetAmount sets total and currency
func (i *Invoice) SetAmount(total decimal.Decimal, currency string) error {
	if total.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Invoice total cannot be negative")
	}
	i.TotalAmount = total
	if currency = strings.ToUpper(strings.TrimSpace(currency)); currency != "" {
		i.Currency = currency
	}
	i.Touch()
	return nil
}

// SetStatus writes the invoice status
func (i *Invoice) SetStatus(status Status) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid invoice status")
	}
	i.Status = status
	i.Touch()
	return nil
}

// SetComment sets the free-form comment
func (i *Invoice) SetComment(comment string) {
	i.Comment = comment
	i.Touch()
}

// Link stamps the external reference
func (i *Invoice) Link(ref shared.ExternalRef) {
	i.ExternalRef = ref
	i.Touch()
}

// IsOverdue reports whether an unpaid invoice is past its due date at now
func (i *Invoice) IsOverdue(now time.Time) bool {
	if i.DueDate == nil || i.Status == StatusPaid || i.Status == StatusCancelled {
		return false
	}
	return now.After(*i.DueDate)
}

// InvoiceItem is one line of an invoice
type InvoiceItem struct {
	shared.BaseEntity
	shared.ExternalRef
	InvoiceID   uuid.UUID
	LineNumber  int
	ProductID   *uuid.UUID
	ProductName string
	Quantity    decimal.Decimal
	Price       decimal.Decimal
	Total       decimal.Decimal
	VatRate     decimal.Decimal
	Unit        string
}

// NewInvoiceItem creates a line; a zero total is derived from quantity and price
func NewInvoiceItem(invoiceID uuid.UUID, lineNumber int, productName string, ref shared.ExternalRef) (*InvoiceItem, error) {
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if lineNumber < 0 {
		return nil, shared.NewDomainError("INVALID_LINE_NUMBER", "Line number cannot be negative")
	}
	productName = strings.TrimSpace(productName)
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if !ref.Source.IsValid() {
		ref.Source = shared.SourceManual
	}
	return &InvoiceItem{
		BaseEntity:  shared.NewBaseEntity(),
		ExternalRef: ref,
		InvoiceID:   invoiceID,
		LineNumber:  lineNumber,
		ProductName: productName,
		Quantity:    decimal.Zero,
		Price:       decimal.Zero,
		Total:       decimal.Zero,
		VatRate:     decimal.Zero,
	}, nil
}

// SetAmounts sets quantity, price and total. A zero total is computed.
func (it *InvoiceItem) SetAmounts(quantity, price, total decimal.Decimal) error {
	if quantity.IsNegative() || price.IsNegative() || total.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Invoice line amounts cannot be negative")
	}
	if total.IsZero() {
		total = quantity.Mul(price).Round(2)
	}
	it.Quantity, it.Price, it.Total = quantity, price, total
	it.UpdatedAt = shared.Now()
	return nil
}

// SumItems totals invoice lines
func SumItems(items []InvoiceItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Total)
	}
	return total
}
