package integration

import (
	"encoding/json"
	"strconv"

	syncapp "github.com/erp/factory/internal/application/sync"
	"github.com/erp/factory/internal/domain/integration"
)

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// companyPayload returns a company payload when the tax code is known, and a
// client payload of kind company otherwise.
func companyPayload(c integration.Company, source string) (*syncapp.CompanyPayload, *syncapp.ClientPayload) {
	if c.TaxCode != "" {
		return &syncapp.CompanyPayload{
			ExternalID: syncapp.ID(c.ID),
			Source:     source,
			Name:       c.Title,
			TaxCode:    c.TaxCode,
			KPP:        optional(c.KPP),
			Email:      optional(c.Email),
			Phone:      optional(c.Phone),
			Address:    optional(c.Address),
		}, nil
	}
	kind := "company"
	return nil, &syncapp.ClientPayload{
		ExternalID: syncapp.ID(c.ID),
		Source:     source,
		Name:       c.Title,
		Kind:       &kind,
		Email:      optional(c.Email),
		Phone:      optional(c.Phone),
		Address:    optional(c.Address),
	}
}

func invoicePayload(inv integration.Invoice, source string) syncapp.InvoicePayload {
	p := syncapp.InvoicePayload{
		ExternalID:       syncapp.ID(inv.ID),
		Source:           source,
		InvoiceNumber:    inv.Number,
		ClientExternalID: syncapp.ID(inv.CompanyID),
		TotalAmount:      syncapp.NewNumber(inv.Total),
		Currency:         optional(inv.Currency),
		Status:           optional(inv.Status),
		Comment:          optional(inv.Comment),
	}
	if inv.Company != nil {
		p.ClientTaxCode = inv.Company.TaxCode
	}
	if inv.IssueDate != nil {
		p.IssueDate = syncapp.NewDate(*inv.IssueDate)
	}
	if inv.DueDate != nil {
		p.DueDate = syncapp.NewDate(*inv.DueDate)
	}
	for i, l := range inv.Lines {
		line := l.LineNumber
		if line <= 0 {
			line = i + 1
		}
		id := l.ID
		if id == "" {
			// lines without their own id are keyed by position
			id = inv.ID + "/" + strconv.Itoa(line)
		}
		p.Items = append(p.Items, syncapp.InvoiceItemPayload{
			ExternalID:  syncapp.ID(id),
			Source:      source,
			LineNumber:  syncapp.NewInt(line),
			ProductName: optional(l.ProductName),
			ProductSKU:  optional(l.SKU),
			Quantity:    syncapp.NewNumber(l.Quantity),
			Price:       syncapp.NewNumber(l.Price),
			Total:       syncapp.NewNumber(l.Total),
			VatRate:     syncapp.NewNumber(l.VatRate),
			Unit:        optional(l.Unit),
		})
	}
	return p
}

func appendRaw(dst []json.RawMessage, v any) ([]json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return dst, err
	}
	return append(dst, b), nil
}
