package invoicing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/factory/internal/domain/invoicing"
)

// InvoiceRow is an invoice joined with its client name
type InvoiceRow struct {
	Invoice    *invoicing.Invoice
	ClientName string
}

// InvoiceItemResponse represents an invoice line
type InvoiceItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	LineNumber  int             `json:"lineNumber"`
	ProductID   *uuid.UUID      `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Total       decimal.Decimal `json:"total"`
	VatRate     decimal.Decimal `json:"vatRate"`
	Unit        string          `json:"unit"`
	ExternalID  string          `json:"externalId,omitempty"`
	Source      string          `json:"source"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID            uuid.UUID             `json:"id"`
	InvoiceNumber string                `json:"invoiceNumber"`
	ClientID      uuid.UUID             `json:"clientId"`
	ClientName    string                `json:"clientName,omitempty"`
	IssueDate     *time.Time            `json:"issueDate"`
	DueDate       *time.Time            `json:"dueDate"`
	TotalAmount   decimal.Decimal       `json:"totalAmount"`
	Currency      string                `json:"currency"`
	Status        string                `json:"status"`
	IsOverdue     bool                  `json:"isOverdue"`
	Comment       string                `json:"comment"`
	ExternalID    string                `json:"externalId,omitempty"`
	Source        string                `json:"source"`
	Items         []InvoiceItemResponse `json:"items,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
}

// ToInvoiceResponse converts a joined invoice row
func ToInvoiceResponse(r *InvoiceRow) InvoiceResponse {
	inv := r.Invoice
	resp := InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		ClientID:      inv.ClientID,
		ClientName:    r.ClientName,
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		TotalAmount:   inv.TotalAmount,
		Currency:      inv.Currency,
		Status:        string(inv.Status),
		IsOverdue:     inv.IsOverdue(time.Now()),
		Comment:       inv.Comment,
		ExternalID:    inv.ExternalID,
		Source:        string(inv.Source),
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
	if len(inv.Items) > 0 {
		resp.Items = make([]InvoiceItemResponse, len(inv.Items))
		for i, it := range inv.Items {
			resp.Items[i] = InvoiceItemResponse{
				ID:          it.ID,
				LineNumber:  it.LineNumber,
				ProductID:   it.ProductID,
				ProductName: it.ProductName,
				Quantity:    it.Quantity,
				Price:       it.Price,
				Total:       it.Total,
				VatRate:     it.VatRate,
				Unit:        it.Unit,
				ExternalID:  it.ExternalID,
				Source:      string(it.Source),
			}
		}
	}
	return resp
}
