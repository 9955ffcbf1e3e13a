package integration

import (
	"time"

	"github.com/shopspring/decimal"

	syncapp "github.com/erp/factory/internal/application/sync"
	"github.com/erp/factory/internal/domain/integration"
)

// RemoteInvoiceResponse is an accounting invoice listed before import
type RemoteInvoiceResponse struct {
	ID          string          `json:"id"`
	Number      string          `json:"number"`
	CompanyID   string          `json:"companyId"`
	CompanyName string          `json:"companyName,omitempty"`
	IssueDate   *time.Time      `json:"issueDate,omitempty"`
	Total       decimal.Decimal `json:"total"`
	Currency    string          `json:"currency"`
	Status      string          `json:"status"`
}

// ToRemoteInvoiceResponse converts an external invoice
func ToRemoteInvoiceResponse(inv integration.Invoice) RemoteInvoiceResponse {
	resp := RemoteInvoiceResponse{
		ID:        inv.ID,
		Number:    inv.Number,
		CompanyID: inv.CompanyID,
		IssueDate: inv.IssueDate,
		Total:     inv.Total,
		Currency:  inv.Currency,
		Status:    inv.Status,
	}
	if inv.Company != nil {
		resp.CompanyName = inv.Company.Title
	}
	return resp
}

// ListRemoteInvoicesRequest pages through accounting invoices
type ListRemoteInvoicesRequest struct {
	Top   int        `form:"top" binding:"omitempty,min=1,max=500"`
	Skip  int        `form:"skip" binding:"omitempty,min=0"`
	Since *time.Time `form:"since" time_format:"2006-01-02"`
}

// ImportResult is the outcome of importing one accounting invoice
type ImportResult struct {
	Company *syncapp.UpsertResult `json:"company,omitempty"`
	Invoice *syncapp.UpsertResult `json:"invoice"`
}
