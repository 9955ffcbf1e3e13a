package syncapp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/factory/internal/domain/invoicing"
	"github.com/erp/factory/internal/domain/partner"
	"github.com/erp/factory/internal/domain/shared"
)

type syncFixture struct {
	store *memStore
	tx    *snapshotTx
	svc   *Service
	seen  map[string]int
}

func (f *syncFixture) RecordSyncItem(_ context.Context, entity, _, outcome string) {
	f.seen[entity+":"+outcome]++
}

func newSyncFixture() *syncFixture {
	store := newMemStore()
	f := &syncFixture{store: store, tx: &snapshotTx{store: store}, seen: map[string]int{}}
	f.svc = NewService(Deps{
		Clients:  memClients{store},
		Contacts: memContacts{store},
		Invoices: memInvoices{store},
		Items:    memItems{store},
		Tx:       f.tx,
		Recorder: f,
	})
	return f
}

func strPtr(s string) *string { return &s }

func raw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestService_UpsertClient(t *testing.T) {
	ctx := context.Background()

	t.Run("second post with the same external id updates", func(t *testing.T) {
		f := newSyncFixture()
		p := ClientPayload{ExternalID: "42", Source: "bitrix24", Name: "ООО Ромашка", TaxCode: strPtr("7701234567")}

		first, err := f.svc.UpsertClient(ctx, p)
		require.NoError(t, err)
		p.Name = "ООО Ромашка Плюс"
		second, err := f.svc.UpsertClient(ctx, p)
		require.NoError(t, err)

		assert.Equal(t, OutcomeCreated, first.Outcome)
		assert.Equal(t, OutcomeUpdated, second.Outcome)
		assert.Equal(t, first.ID, second.ID)
		require.Len(t, f.store.clients, 1)
		assert.Equal(t, "ООО Ромашка Плюс", f.store.clients[first.ID].Name)
		assert.Equal(t, 1, f.seen["client:created"])
		assert.Equal(t, 1, f.seen["client:updated"])
	})

	t.Run("tax code links an unlinked manual client", func(t *testing.T) {
		f := newSyncFixture()
		manual, err := partner.NewClient("Romashka LLC", partner.ClientTypeCustomer, shared.ManualRef())
		require.NoError(t, err)
		require.NoError(t, manual.SetTaxCodes("7701234567", ""))
		require.NoError(t, manual.SetContact("office@romashka.ru", "", ""))
		f.store.clients[manual.ID] = *manual

		res, err := f.svc.UpsertClient(ctx, ClientPayload{ExternalID: "b-77", Source: "bitrix24", Name: "Romashka", TaxCode: strPtr("7701234567")})
		require.NoError(t, err)

		assert.Equal(t, OutcomeUpdated, res.Outcome)
		assert.Equal(t, manual.ID, res.ID)
		require.Len(t, f.store.clients, 1)
		stored := f.store.clients[manual.ID]
		assert.Equal(t, shared.ExternalRef{ExternalID: "b-77", Source: shared.SourceBitrix24}, stored.ExternalRef)
		// fields absent from the payload are kept
		assert.Equal(t, "office@romashka.ru", stored.Email)
	})

	t.Run("tax code does not steal a client linked elsewhere", func(t *testing.T) {
		f := newSyncFixture()
		linked, err := partner.NewClient("Romashka", partner.ClientTypeCustomer, shared.ExternalRef{ExternalID: "1c-5", Source: shared.Source1C})
		require.NoError(t, err)
		require.NoError(t, linked.SetTaxCodes("7701234567", ""))
		f.store.clients[linked.ID] = *linked

		res, err := f.svc.UpsertClient(ctx, ClientPayload{ExternalID: "b-77", Source: "bitrix24", Name: "Romashka", TaxCode: strPtr("7701234567")})
		require.NoError(t, err)
		assert.Equal(t, OutcomeCreated, res.Outcome)
		assert.Len(t, f.store.clients, 2)
	})

	t.Run("tax code skips linked clients for a newer manual one", func(t *testing.T) {
		f := newSyncFixture()
		linked, err := partner.NewClient("Romashka", partner.ClientTypeCustomer, shared.ExternalRef{ExternalID: "b-5", Source: shared.SourceBitrix24})
		require.NoError(t, err)
		require.NoError(t, linked.SetTaxCodes("7701234567", ""))
		linked.CreatedAt = time.Now().Add(-time.Hour)
		f.store.clients[linked.ID] = *linked

		manual, err := partner.NewClient("Romashka LLC", partner.ClientTypeCustomer, shared.ManualRef())
		require.NoError(t, err)
		require.NoError(t, manual.SetTaxCodes("7701234567", ""))
		f.store.clients[manual.ID] = *manual

		res, err := f.svc.UpsertClient(ctx, ClientPayload{ExternalID: "1c-9", Source: "1c", Name: "Romashka", TaxCode: strPtr("7701234567")})
		require.NoError(t, err)
		assert.Equal(t, OutcomeUpdated, res.Outcome)
		assert.Equal(t, manual.ID, res.ID)
		assert.Len(t, f.store.clients, 2)
		assert.Equal(t, shared.ExternalRef{ExternalID: "1c-9", Source: shared.Source1C}, f.store.clients[manual.ID].ExternalRef)
		assert.Equal(t, shared.ExternalRef{ExternalID: "b-5", Source: shared.SourceBitrix24}, f.store.clients[linked.ID].ExternalRef)
	})

	t.Run("invalid payload is a validation error", func(t *testing.T) {
		f := newSyncFixture()
		_, err := f.svc.UpsertClient(ctx, ClientPayload{Source: "bitrix24", Email: strPtr("not-an-email")})

		var verr *shared.ValidationError
		require.ErrorAs(t, err, &verr)
		fields := map[string]string{}
		for _, fe := range verr.Fields {
			fields[fe.Field] = fe.Message
		}
		assert.Contains(t, fields, "externalId")
		assert.Contains(t, fields, "name")
		assert.Equal(t, "Invalid email format", fields["email"])
		assert.Empty(t, f.store.clients)
	})

	t.Run("missing source is rejected", func(t *testing.T) {
		f := newSyncFixture()
		_, err := f.svc.UpsertClient(ctx, ClientPayload{ExternalID: "1", Name: "X"})
		var verr *shared.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "source", verr.Fields[0].Field)
	})
}

func TestService_UpsertCompany(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture()

	res, err := f.svc.UpsertCompany(ctx, CompanyPayload{ExternalID: "c1", Source: "1c", Name: "Vector JSC", TaxCode: "5001112223", KPP: strPtr("500101001")})
	require.NoError(t, err)

	stored := f.store.clients[res.ID]
	assert.Equal(t, EntityCompany, res.Entity)
	assert.Equal(t, partner.ClientKindCompany, stored.Kind)
	assert.Equal(t, "500101001", stored.KPP)
}

func TestService_UpsertContact(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture()
	client, err := f.svc.UpsertClient(ctx, ClientPayload{ExternalID: "42", Source: "bitrix24", Name: "Romashka", TaxCode: strPtr("7701234567")})
	require.NoError(t, err)

	t.Run("resolves the client by external id", func(t *testing.T) {
		res, err := f.svc.UpsertContact(ctx, ContactPayload{
			ExternalID: "p1", Source: "bitrix24", ClientExternalID: "42",
			FirstName: strPtr("Ivan"), LastName: strPtr("Petrov"), Email: strPtr("ivan@romashka.ru"),
		})
		require.NoError(t, err)
		assert.Equal(t, OutcomeCreated, res.Outcome)
		assert.Equal(t, client.ID, f.store.contacts[res.ID].ClientID)
	})

	t.Run("falls back to email within the client", func(t *testing.T) {
		res, err := f.svc.UpsertContact(ctx, ContactPayload{
			ExternalID: "p1-new", Source: "bitrix24", ClientTaxCode: "7701234567",
			Email: strPtr("IVAN@romashka.ru"), Position: strPtr("CEO"),
		})
		require.NoError(t, err)
		assert.Equal(t, OutcomeUpdated, res.Outcome)
		require.Len(t, f.store.contacts, 1)
		stored := f.store.contacts[res.ID]
		assert.Equal(t, "Ivan", stored.FirstName)
		assert.Equal(t, "CEO", stored.Position)
		assert.Equal(t, "p1-new", stored.ExternalID)
	})

	t.Run("unknown client is not found", func(t *testing.T) {
		_, err := f.svc.UpsertContact(ctx, ContactPayload{ExternalID: "p2", Source: "bitrix24", ClientExternalID: "missing", FirstName: strPtr("A")})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("client reference is required", func(t *testing.T) {
		_, err := f.svc.UpsertContact(ctx, ContactPayload{ExternalID: "p3", Source: "bitrix24", FirstName: strPtr("A")})
		var verr *shared.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "clientExternalId", verr.Fields[0].Field)
	})
}

func TestService_UpsertInvoice(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture()
	_, err := f.svc.UpsertClient(ctx, ClientPayload{ExternalID: "42", Source: "1c", Name: "Romashka"})
	require.NoError(t, err)

	t.Run("nested lines set the total", func(t *testing.T) {
		res, err := f.svc.UpsertInvoice(ctx, InvoicePayload{
			ExternalID: "inv-1", Source: "1c", InvoiceNumber: "СЧ-001", ClientExternalID: "42",
			IssueDate: NewDate(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
			Status:    strPtr("Оплачен"),
			Items: []InvoiceItemPayload{
				{ExternalID: "inv-1/1", LineNumber: NewInt(1), ProductName: strPtr("Table"), Quantity: NewNumber(decimal.NewFromInt(2)), Price: NewNumber(decimal.NewFromInt(150))},
				{ExternalID: "inv-1/2", LineNumber: NewInt(2), ProductName: strPtr("Chair"), Quantity: NewNumber(decimal.NewFromInt(4)), Price: NewNumber(decimal.NewFromFloat(25.5))},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, OutcomeCreated, res.Outcome)
		assert.Len(t, res.Items, 2)
		stored := f.store.invoices[res.ID]
		assert.True(t, decimal.NewFromInt(402).Equal(stored.TotalAmount), stored.TotalAmount.String())
		assert.Equal(t, invoicing.StatusPaid, stored.Status)
		assert.Equal(t, shared.Source1C, f.store.items[res.Items[0].ID].Source)
	})

	t.Run("matches by invoice number", func(t *testing.T) {
		res, err := f.svc.UpsertInvoice(ctx, InvoicePayload{
			ExternalID: "inv-1-renamed", Source: "1c", InvoiceNumber: "СЧ-001", ClientExternalID: "42",
			TotalAmount: NewNumber(decimal.NewFromInt(500)),
		})
		require.NoError(t, err)
		assert.Equal(t, OutcomeUpdated, res.Outcome)
		assert.Len(t, f.store.invoices, 1)
		assert.True(t, decimal.NewFromInt(500).Equal(f.store.invoices[res.ID].TotalAmount))
	})

	t.Run("a failing line rolls back the invoice", func(t *testing.T) {
		before := len(f.store.invoices)
		_, err := f.svc.UpsertInvoice(ctx, InvoicePayload{
			ExternalID: "inv-2", Source: "1c", InvoiceNumber: "СЧ-002", ClientExternalID: "42",
			Items: []InvoiceItemPayload{{ExternalID: "inv-2/1", LineNumber: NewInt(1), ProductName: strPtr("FAIL")}},
		})
		require.Error(t, err)
		assert.Len(t, f.store.invoices, before)
	})
}

func TestService_UpsertInvoice_NumberFromAnotherSource(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture()
	_, err := f.svc.UpsertClient(ctx, ClientPayload{ExternalID: "42", Source: "bitrix24", Name: "Romashka"})
	require.NoError(t, err)
	_, err = f.svc.UpsertClient(ctx, ClientPayload{ExternalID: "42", Source: "1c", Name: "Romashka"})
	require.NoError(t, err)

	fromCRM, err := f.svc.UpsertInvoice(ctx, InvoicePayload{ExternalID: "B-1", Source: "bitrix24", InvoiceNumber: "7", ClientExternalID: "42"})
	require.NoError(t, err)
	require.Equal(t, OutcomeCreated, fromCRM.Outcome)

	fromAccounting, err := f.svc.UpsertInvoice(ctx, InvoicePayload{ExternalID: "ONEC-9", Source: "1c", InvoiceNumber: "7", ClientExternalID: "42"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, fromAccounting.Outcome)
	assert.NotEqual(t, fromCRM.ID, fromAccounting.ID)
	assert.Equal(t, shared.ExternalRef{ExternalID: "B-1", Source: shared.SourceBitrix24}, f.store.invoices[fromCRM.ID].ExternalRef)

	again, err := f.svc.UpsertInvoice(ctx, InvoicePayload{ExternalID: "B-1", Source: "bitrix24", InvoiceNumber: "7", ClientExternalID: "42"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, again.Outcome)
	assert.Equal(t, fromCRM.ID, again.ID)

	stats, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Invoices[shared.SourceBitrix24])
	assert.EqualValues(t, 1, stats.Invoices[shared.Source1C])
}

func TestService_UpsertInvoiceItem(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture()
	_, err := f.svc.UpsertClient(ctx, ClientPayload{ExternalID: "42", Source: "bitrix24", Name: "Romashka"})
	require.NoError(t, err)
	inv, err := f.svc.UpsertInvoice(ctx, InvoicePayload{ExternalID: "i1", Source: "bitrix24", InvoiceNumber: "B-1", ClientExternalID: "42"})
	require.NoError(t, err)

	res, err := f.svc.UpsertInvoiceItem(ctx, InvoiceItemPayload{
		ExternalID: "l1", Source: "bitrix24", InvoiceExternalID: "i1", LineNumber: NewInt(1),
		ProductName: strPtr("Desk"), Quantity: NewNumber(decimal.NewFromInt(3)), Price: NewNumber(decimal.NewFromInt(10)),
	})
	require.NoError(t, err)
	assert.Equal(t, inv.ID, f.store.items[res.ID].InvoiceID)
	assert.True(t, decimal.NewFromInt(30).Equal(f.store.items[res.ID].Total))

	t.Run("same line number updates the line", func(t *testing.T) {
		again, err := f.svc.UpsertInvoiceItem(ctx, InvoiceItemPayload{
			ExternalID: "l1-other", Source: "bitrix24", InvoiceExternalID: "i1", LineNumber: NewInt(1), Price: NewNumber(decimal.NewFromInt(12)),
		})
		require.NoError(t, err)
		assert.Equal(t, res.ID, again.ID)
		assert.True(t, decimal.NewFromInt(36).Equal(f.store.items[res.ID].Total))
	})

	t.Run("unknown invoice is not found", func(t *testing.T) {
		_, err := f.svc.UpsertInvoiceItem(ctx, InvoiceItemPayload{ExternalID: "l9", Source: "bitrix24", InvoiceExternalID: "nope", LineNumber: NewInt(1), ProductName: strPtr("X")})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestService_Batch(t *testing.T) {
	ctx := context.Background()

	t.Run("collects per-item failures", func(t *testing.T) {
		f := newSyncFixture()
		req := BatchRequest{
			Source:  "bitrix24",
			Clients: []json.RawMessage{raw(t, map[string]any{"externalId": 42, "name": "Romashka"})},
			Contacts: []json.RawMessage{
				raw(t, map[string]any{"externalId": "c1", "clientExternalId": "42", "firstName": "Ivan"}),
				raw(t, map[string]any{"externalId": "c2", "clientExternalId": "unknown", "firstName": "Oleg"}),
				raw(t, map[string]any{"externalId": "c3", "clientExternalId": "42", "firstName": "Anna"}),
			},
		}

		res, err := f.svc.Batch(ctx, req)
		require.NoError(t, err)

		assert.Equal(t, 4, res.Total)
		assert.Equal(t, 3, res.Succeeded)
		assert.Equal(t, 1, res.Failed)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, EntityContact, res.Errors[0].Entity)
		assert.Equal(t, 1, res.Errors[0].Index)
		assert.Equal(t, "c2", res.Errors[0].ExternalID)
		assert.Equal(t, "NOT_FOUND", res.Errors[0].Code)
		assert.Len(t, f.store.contacts, 2)
	})

	t.Run("malformed items do not abort the batch", func(t *testing.T) {
		f := newSyncFixture()
		req := BatchRequest{
			Source: "1c",
			Clients: []json.RawMessage{
				json.RawMessage(`{"externalId":"1","name":"A","isActive":"maybe"}`),
				json.RawMessage(`{"externalId":"2"}`),
				json.RawMessage(`{"externalId":"3","name":"C"}`),
			},
			InvoiceItems: []json.RawMessage{
				json.RawMessage(`{"externalId":"x","invoiceExternalId":"i","lineNumber":"one"}`),
			},
		}

		res, err := f.svc.Batch(ctx, req)
		require.NoError(t, err)

		assert.Equal(t, 1, res.Succeeded)
		assert.Equal(t, 3, res.Failed)
		for _, e := range res.Errors {
			assert.Equal(t, "VALIDATION_ERROR", e.Code)
		}
		assert.Equal(t, "1", res.Errors[0].ExternalID)
		assert.Equal(t, "name", res.Errors[1].Fields[0].Field)
		assert.Equal(t, 3, f.seen["client:failed"]+f.seen["invoiceItem:failed"])
	})

	t.Run("parents are processed first", func(t *testing.T) {
		f := newSyncFixture()
		req := BatchRequest{
			Source:    "bitrix24",
			Invoices:  []json.RawMessage{raw(t, map[string]any{"externalId": "i1", "invoiceNumber": "B-1", "clientExternalId": "co1", "totalAmount": "1 250,50", "dueDate": "01.04.2024"})},
			Companies: []json.RawMessage{raw(t, map[string]any{"externalId": "co1", "name": "Vector", "taxCode": "5001112223"})},
		}

		res, err := f.svc.Batch(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Created)
		assert.Equal(t, EntityCompany, res.Results[0].Entity)

		stored := f.store.invoices[res.Results[1].ID]
		assert.True(t, decimal.RequireFromString("1250.50").Equal(stored.TotalAmount))
		require.NotNil(t, stored.DueDate)
		assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), *stored.DueDate)
	})
}

func TestService_BulkInvoices(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture()
	_, err := f.svc.UpsertClient(ctx, ClientPayload{ExternalID: "42", Source: "1c", Name: "Romashka"})
	require.NoError(t, err)

	res, err := f.svc.BulkInvoices(ctx, BulkInvoicesRequest{
		Source: "1c",
		Invoices: []json.RawMessage{
			json.RawMessage(`{"externalId":"a","invoiceNumber":"A-1","clientExternalId":"42","items":[{"externalId":"a1","lineNumber":1,"productName":"Desk","quantity":"1","price":"99.90"}]}`),
			json.RawMessage(`{"externalId":"b","invoiceNumber":"B-1","clientExternalId":"42","items":[{"externalId":"b1","lineNumber":1,"productName":"FAIL"}]}`),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	assert.Len(t, f.store.invoices, 1)
	assert.Len(t, f.store.items, 1)
	assert.Len(t, res.Results[0].Items, 1)
}

func TestService_Stats(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture()
	manual, err := partner.NewClient("Manual", partner.ClientTypeCustomer, shared.ManualRef())
	require.NoError(t, err)
	f.store.clients[manual.ID] = *manual
	_, err = f.svc.UpsertClient(ctx, ClientPayload{ExternalID: "42", Source: "bitrix24", Name: "Romashka"})
	require.NoError(t, err)
	_, err = f.svc.UpsertInvoice(ctx, InvoicePayload{ExternalID: "i1", Source: "bitrix24", InvoiceNumber: "B-1", ClientExternalID: "42"})
	require.NoError(t, err)

	stats, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Clients[shared.SourceManual])
	assert.Equal(t, int64(1), stats.Clients[shared.SourceBitrix24])
	assert.Equal(t, int64(1), stats.Invoices[shared.SourceBitrix24])
	assert.NotNil(t, stats.LastSyncAt)
}
