package syncapp

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// batchStep decodes and reconciles one raw item
type batchStep struct {
	entity Entity
	items  []json.RawMessage
	run    func(ctx context.Context, raw json.RawMessage) (*UpsertResult, ID, error)
}

func step[T any](entity Entity, items []json.RawMessage, source string, setSource func(*T, string), upsert func(context.Context, T) (*UpsertResult, error), externalID func(T) ID) batchStep {
	return batchStep{
		entity: entity,
		items:  items,
		run: func(ctx context.Context, raw json.RawMessage) (*UpsertResult, ID, error) {
			var p T
			if err := json.Unmarshal(raw, &p); err != nil {
				return nil, peekExternalID(raw), decodeError(err)
			}
			setSource(&p, source)
			res, err := upsert(ctx, p)
			return res, externalID(p), err
		},
	}
}

// peekExternalID recovers the external id of an item that failed to decode
func peekExternalID(raw json.RawMessage) ID {
	var probe struct {
		ExternalID ID `json:"externalId"`
	}
	_ = json.Unmarshal(raw, &probe)
	return probe.ExternalID
}

func defaultSource(current *string, batch string) {
	if *current == "" {
		*current = batch
	}
}

// Batch reconciles every item independently, parents first, so contacts and
// invoices can reference clients created earlier in the same batch. Item
// failures are collected in the result.
func (s *Service) Batch(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	steps := []batchStep{
		step(EntityClient, req.Clients, req.Source,
			func(p *ClientPayload, src string) { defaultSource(&p.Source, src) },
			s.UpsertClient, func(p ClientPayload) ID { return p.ExternalID }),
		step(EntityCompany, req.Companies, req.Source,
			func(p *CompanyPayload, src string) { defaultSource(&p.Source, src) },
			s.UpsertCompany, func(p CompanyPayload) ID { return p.ExternalID }),
		step(EntityContact, req.Contacts, req.Source,
			func(p *ContactPayload, src string) { defaultSource(&p.Source, src) },
			s.UpsertContact, func(p ContactPayload) ID { return p.ExternalID }),
		step(EntityInvoice, req.Invoices, req.Source,
			func(p *InvoicePayload, src string) { defaultSource(&p.Source, src) },
			s.UpsertInvoice, func(p InvoicePayload) ID { return p.ExternalID }),
		step(EntityInvoiceItem, req.InvoiceItems, req.Source,
			func(p *InvoiceItemPayload, src string) { defaultSource(&p.Source, src) },
			s.UpsertInvoiceItem, func(p InvoiceItemPayload) ID { return p.ExternalID }),
	}

	result := newBatchResult(req.Len())
	for _, st := range steps {
		for i, raw := range st.items {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			res, externalID, err := st.run(ctx, raw)
			if err != nil {
				item := result.fail(st.entity, i, externalID.String(), err)
				s.recorder.RecordSyncItem(ctx, string(st.entity), req.Source, string(OutcomeFailed))
				s.logger.Warn("Sync item failed",
					zap.String("entity", string(st.entity)),
					zap.Int("index", i),
					zap.String("external_id", item.ExternalID),
					zap.String("code", item.Code),
					zap.String("message", item.Message))
				continue
			}
			result.succeed(*res)
		}
	}

	s.logger.Info("Sync batch processed",
		zap.String("source", req.Source),
		zap.Int("total", result.Total),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("failed", result.Failed))
	return result, nil
}

// BulkInvoices reconciles invoices with nested lines. Each invoice and its
// lines form one unit of work; a failing line rolls back only its invoice.
func (s *Service) BulkInvoices(ctx context.Context, req BulkInvoicesRequest) (*BatchResult, error) {
	return s.Batch(ctx, BatchRequest{Source: req.Source, Invoices: req.Invoices})
}
