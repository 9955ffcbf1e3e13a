package integration

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotConfigured   = errors.New("integration: system not configured")
	ErrRequestFailed   = errors.New("integration: request failed")
	ErrInvalidResponse = errors.New("integration: invalid response")
	ErrAuthFailed      = errors.New("integration: authentication failed")
	ErrRecordNotFound  = errors.New("integration: record not found")
)

// Company is a legal entity as stored in an external system
type Company struct {
	ID      string
	Title   string
	TaxCode string
	KPP     string
	Email   string
	Phone   string
	Address string
}

// InvoiceLine is one line of an external invoice
type InvoiceLine struct {
	ID          string
	LineNumber  int
	ProductName string
	SKU         string
	Unit        string
	Quantity    decimal.Decimal
	Price       decimal.Decimal
	Total       decimal.Decimal
	VatRate     decimal.Decimal
}

// Invoice is an invoice as stored in an external system.
// Status is the raw external status.
type Invoice struct {
	ID        string
	Number    string
	CompanyID string
	// Company is set when the system returns the counterparty inline.
	Company   *Company
	IssueDate *time.Time
	DueDate   *time.Time
	Total     decimal.Decimal
	Currency  string
	Status    string
	Comment   string
	Lines     []InvoiceLine
}

// CRM reads companies and invoices from a CRM
type CRM interface {
	ListCompanies(ctx context.Context) ([]Company, error)
	ListInvoices(ctx context.Context) ([]Invoice, error)
}

// InvoiceQuery pages through accounting invoices
type InvoiceQuery struct {
	Top   int
	Skip  int
	Since *time.Time
}

// Accounting reads invoices from an accounting system
type Accounting interface {
	ListInvoices(ctx context.Context, q InvoiceQuery) ([]Invoice, error)
	// GetInvoice returns the invoice with its lines and counterparty.
	GetInvoice(ctx context.Context, id string) (*Invoice, error)
}
