package syncapp

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/erp/factory/internal/domain/shared"
)

// Entity names the kind of record being synchronized
type Entity string

const (
	EntityClient      Entity = "client"
	EntityCompany     Entity = "company"
	EntityContact     Entity = "contact"
	EntityInvoice     Entity = "invoice"
	EntityInvoiceItem Entity = "invoiceItem"
)

// Outcome says whether an upsert inserted or modified a record
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
	OutcomeFailed  Outcome = "failed"
)

// UpsertResult is the outcome of one reconciled record
type UpsertResult struct {
	Entity     Entity         `json:"entity"`
	ID         uuid.UUID      `json:"id"`
	ExternalID string         `json:"externalId"`
	Source     shared.Source  `json:"source"`
	Outcome    Outcome        `json:"outcome"`
	Items      []UpsertResult `json:"items,omitempty"`
}

// ItemError describes a batch item that could not be reconciled
type ItemError struct {
	Entity     Entity              `json:"entity"`
	Index      int                 `json:"index"`
	ExternalID string              `json:"externalId,omitempty"`
	Code       string              `json:"code"`
	Message    string              `json:"message"`
	Fields     []shared.FieldError `json:"fields,omitempty"`
}

// BatchResult summarizes a batch; failed items never fail the request
type BatchResult struct {
	Total     int            `json:"total"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Created   int            `json:"created"`
	Updated   int            `json:"updated"`
	Results   []UpsertResult `json:"results"`
	Errors    []ItemError    `json:"errors"`
}

func newBatchResult(total int) *BatchResult {
	return &BatchResult{
		Total:   total,
		Results: make([]UpsertResult, 0, total),
		Errors:  []ItemError{},
	}
}

func (r *BatchResult) succeed(res UpsertResult) {
	r.Succeeded++
	if res.Outcome == OutcomeCreated {
		r.Created++
	} else {
		r.Updated++
	}
	r.Results = append(r.Results, res)
}

func (r *BatchResult) fail(entity Entity, index int, externalID string, err error) ItemError {
	item := ItemError{Entity: entity, Index: index, ExternalID: externalID}
	var verr *shared.ValidationError
	var derr *shared.DomainError
	switch {
	case errors.As(err, &verr):
		item.Code = "VALIDATION_ERROR"
		item.Message = "Payload validation failed"
		item.Fields = verr.Fields
	case errors.As(err, &derr):
		item.Code = derr.Code
		item.Message = derr.Message
	default:
		item.Code = "INTERNAL_ERROR"
		item.Message = err.Error()
	}
	r.Failed++
	r.Errors = append(r.Errors, item)
	return item
}

// SourceCounts holds record counts per source
type SourceCounts map[shared.Source]int64

// Stats reports what has been synchronized so far
type Stats struct {
	Clients      SourceCounts `json:"clients"`
	Contacts     SourceCounts `json:"contacts"`
	Invoices     SourceCounts `json:"invoices"`
	InvoiceItems SourceCounts `json:"invoiceItems"`
	LastSyncAt   *time.Time   `json:"lastSyncAt"`
}
