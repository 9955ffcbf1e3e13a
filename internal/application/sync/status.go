package syncapp

import (
	"strings"

	"github.com/erp/factory/internal/domain/invoicing"
	"github.com/erp/factory/internal/domain/shared"
)

// bitrix24Statuses maps classic invoice status ids and smart-invoice stage
// suffixes to local statuses.
var bitrix24Statuses = map[string]invoicing.Status{
	"N":       invoicing.StatusDraft,
	"S":       invoicing.StatusSent,
	"A":       invoicing.StatusSent,
	"P":       invoicing.StatusPaid,
	"D":       invoicing.StatusCancelled,
	"NEW":     invoicing.StatusDraft,
	"SEND":    invoicing.StatusSent,
	"UNPAID":  invoicing.StatusSent,
	"SUCCESS": invoicing.StatusPaid,
	"FAIL":    invoicing.StatusCancelled,
	"OVERDUE": invoicing.StatusOverdue,
}

// oneCStatuses maps 1C document states, compared case-insensitively
var oneCStatuses = map[string]invoicing.Status{
	"черновик":         invoicing.StatusDraft,
	"не оплачен":       invoicing.StatusSent,
	"выставлен":        invoicing.StatusSent,
	"частично оплачен": invoicing.StatusSent,
	"оплачен":          invoicing.StatusPaid,
	"просрочен":        invoicing.StatusOverdue,
	"отменен":          invoicing.StatusCancelled,
	"отменён":          invoicing.StatusCancelled,
	"draft":            invoicing.StatusDraft,
	"notpaid":          invoicing.StatusSent,
	"partiallypaid":    invoicing.StatusSent,
	"paid":             invoicing.StatusPaid,
}

// MapInvoiceStatus translates an external status to a local one. Local status
// names are accepted from any source; unknown values map to draft.
func MapInvoiceStatus(source shared.Source, raw string) invoicing.Status {
	raw = strings.TrimSpace(raw)
	if local := invoicing.Status(strings.ToLower(raw)); local.IsValid() {
		return local
	}
	switch source {
	case shared.SourceBitrix24:
		key := strings.ToUpper(raw)
		// smart invoices use stage ids like DT31_1:P
		if i := strings.LastIndexByte(key, ':'); i >= 0 {
			key = key[i+1:]
		}
		if s, ok := bitrix24Statuses[key]; ok {
			return s
		}
	case shared.Source1C:
		if s, ok := oneCStatuses[strings.ToLower(raw)]; ok {
			return s
		}
	}
	return invoicing.StatusDraft
}
