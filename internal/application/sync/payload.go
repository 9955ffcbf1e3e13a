package syncapp

import "encoding/json"

// ClientPayload is a customer or supplier record from an external system
type ClientPayload struct {
	ExternalID ID      `json:"externalId" validate:"required,max=100"`
	Source     string  `json:"source" validate:"omitempty,oneof=bitrix24 1c manual"`
	Name       string  `json:"name" validate:"required,max=300"`
	Type       *string `json:"type" validate:"omitempty,oneof=customer supplier both"`
	Kind       *string `json:"kind" validate:"omitempty,oneof=company individual"`
	TaxCode    *string `json:"taxCode" validate:"omitempty,max=20"`
	KPP        *string `json:"kpp" validate:"omitempty,max=20"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Phone      *string `json:"phone" validate:"omitempty,max=50"`
	Address    *string `json:"address" validate:"omitempty,max=500"`
	IsActive   *bool   `json:"isActive"`
}

// CompanyPayload is a legal entity; companies are stored as clients of kind company
type CompanyPayload struct {
	ExternalID ID      `json:"externalId" validate:"required,max=100"`
	Source     string  `json:"source" validate:"omitempty,oneof=bitrix24 1c manual"`
	Name       string  `json:"name" validate:"required,max=300"`
	TaxCode    string  `json:"taxCode" validate:"required,max=20"`
	KPP        *string `json:"kpp" validate:"omitempty,max=20"`
	Type       *string `json:"type" validate:"omitempty,oneof=customer supplier both"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Phone      *string `json:"phone" validate:"omitempty,max=50"`
	Address    *string `json:"address" validate:"omitempty,max=500"`
}

// ContactPayload is a person at a client. The client is referenced by
// external id or by tax code.
type ContactPayload struct {
	ExternalID       ID      `json:"externalId" validate:"required,max=100"`
	Source           string  `json:"source" validate:"omitempty,oneof=bitrix24 1c manual"`
	ClientExternalID ID      `json:"clientExternalId" validate:"required_without=ClientTaxCode,max=100"`
	ClientTaxCode    string  `json:"clientTaxCode" validate:"omitempty,max=20"`
	FirstName        *string `json:"firstName" validate:"omitempty,max=100"`
	LastName         *string `json:"lastName" validate:"omitempty,max=100"`
	Position         *string `json:"position" validate:"omitempty,max=100"`
	Email            *string `json:"email" validate:"omitempty,email"`
	Phone            *string `json:"phone" validate:"omitempty,max=50"`
	IsPrimary        *bool   `json:"isPrimary"`
}

// InvoicePayload is an invoice header, optionally with its lines
type InvoicePayload struct {
	ExternalID       ID      `json:"externalId" validate:"required,max=100"`
	Source           string  `json:"source" validate:"omitempty,oneof=bitrix24 1c manual"`
	InvoiceNumber    string  `json:"invoiceNumber" validate:"required,max=50"`
	ClientExternalID ID      `json:"clientExternalId" validate:"required_without=ClientTaxCode,max=100"`
	ClientTaxCode    string  `json:"clientTaxCode" validate:"omitempty,max=20"`
	IssueDate        Date    `json:"issueDate"`
	DueDate          Date    `json:"dueDate"`
	TotalAmount      Number  `json:"totalAmount" validate:"omitempty,gte=0"`
	Currency         *string `json:"currency" validate:"omitempty,len=3"`
	Status           *string `json:"status" validate:"omitempty,max=50"`
	Comment          *string `json:"comment" validate:"omitempty,max=2000"`

	Items []InvoiceItemPayload `json:"items" validate:"omitempty,dive"`
}

// InvoiceItemPayload is one invoice line. Nested lines of an InvoicePayload
// need no invoice reference.
type InvoiceItemPayload struct {
	ExternalID        ID      `json:"externalId" validate:"required,max=100"`
	Source            string  `json:"source" validate:"omitempty,oneof=bitrix24 1c manual"`
	InvoiceExternalID ID      `json:"invoiceExternalId" validate:"omitempty,max=100"`
	LineNumber        Int     `json:"lineNumber" validate:"required,gte=1"`
	ProductName       *string `json:"productName" validate:"omitempty,max=300"`
	ProductSKU        *string `json:"productSku" validate:"omitempty,max=50"`
	Quantity          Number  `json:"quantity" validate:"omitempty,gte=0"`
	Price             Number  `json:"price" validate:"omitempty,gte=0"`
	Total             Number  `json:"total" validate:"omitempty,gte=0"`
	VatRate           Number  `json:"vatRate" validate:"omitempty,gte=0,lte=100"`
	Unit              *string `json:"unit" validate:"omitempty,max=20"`
}

// BatchRequest carries several entity kinds at once. Items stay raw so that
// one malformed item becomes an error entry instead of failing the request.
type BatchRequest struct {
	Source       string            `json:"source"`
	Clients      []json.RawMessage `json:"clients"`
	Companies    []json.RawMessage `json:"companies"`
	Contacts     []json.RawMessage `json:"contacts"`
	Invoices     []json.RawMessage `json:"invoices"`
	InvoiceItems []json.RawMessage `json:"invoiceItems"`
}

// Len returns the number of items in the batch
func (b BatchRequest) Len() int {
	return len(b.Clients) + len(b.Companies) + len(b.Contacts) + len(b.Invoices) + len(b.InvoiceItems)
}

// BulkInvoicesRequest carries invoices with nested items
type BulkInvoicesRequest struct {
	Source   string            `json:"source"`
	Invoices []json.RawMessage `json:"invoices"`
}
