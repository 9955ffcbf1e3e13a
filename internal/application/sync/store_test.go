package syncapp

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/erp/factory/internal/domain/invoicing"
	"github.com/erp/factory/internal/domain/partner"
	"github.com/erp/factory/internal/domain/shared"
)

// memStore keeps synced records in maps and hands out copies, so a record
// is only changed by Save.
type memStore struct {
	clients  map[uuid.UUID]partner.Client
	contacts map[uuid.UUID]partner.Contact
	invoices map[uuid.UUID]invoicing.Invoice
	items    map[uuid.UUID]invoicing.InvoiceItem
	failSave error
}

func newMemStore() *memStore {
	return &memStore{
		clients:  map[uuid.UUID]partner.Client{},
		contacts: map[uuid.UUID]partner.Contact{},
		invoices: map[uuid.UUID]invoicing.Invoice{},
		items:    map[uuid.UUID]invoicing.InvoiceItem{},
	}
}

type memClients struct{ *memStore }

func (m memClients) FindByID(_ context.Context, id uuid.UUID) (*partner.Client, error) {
	if c, ok := m.clients[id]; ok {
		return &c, nil
	}
	return nil, shared.ErrNotFound
}

func (m memClients) FindByIDs(_ context.Context, ids []uuid.UUID) ([]partner.Client, error) {
	var out []partner.Client
	for _, id := range ids {
		if c, ok := m.clients[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m memClients) FindByExternalRef(_ context.Context, ref shared.ExternalRef) (*partner.Client, error) {
	for _, c := range m.clients {
		if c.ExternalRef == ref {
			return &c, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m memClients) FindByTaxCode(_ context.Context, taxCode string) (*partner.Client, error) {
	var found []partner.Client
	for _, c := range m.clients {
		if c.TaxCode == taxCode {
			found = append(found, c)
		}
	}
	if len(found) == 0 {
		return nil, shared.ErrNotFound
	}
	sort.Slice(found, func(i, j int) bool { return found[i].CreatedAt.Before(found[j].CreatedAt) })
	return &found[0], nil
}

func (m memClients) FindUnlinkedByTaxCode(_ context.Context, taxCode string) (*partner.Client, error) {
	var found []partner.Client
	for _, c := range m.clients {
		if c.TaxCode == taxCode && !c.IsLinked() {
			found = append(found, c)
		}
	}
	if len(found) == 0 {
		return nil, shared.ErrNotFound
	}
	sort.Slice(found, func(i, j int) bool { return found[i].CreatedAt.Before(found[j].CreatedAt) })
	return &found[0], nil
}

func (m memClients) FindAll(context.Context, shared.Filter) ([]partner.Client, error) {
	out := make([]partner.Client, 0, len(m.clients))
	for _, c := range m.clients {
		out = append(out, c)
	}
	return out, nil
}

func (m memClients) Count(context.Context, shared.Filter) (int64, error) {
	return int64(len(m.clients)), nil
}

func (m memClients) CountBySource(context.Context) (map[shared.Source]int64, error) {
	out := map[shared.Source]int64{}
	for _, c := range m.clients {
		out[c.Source]++
	}
	return out, nil
}

func (m memClients) Save(_ context.Context, c *partner.Client) error {
	if m.failSave != nil {
		return m.failSave
	}
	m.clients[c.ID] = *c
	return nil
}

func (m memClients) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.clients, id)
	return nil
}

type memContacts struct{ *memStore }

func (m memContacts) FindByID(_ context.Context, id uuid.UUID) (*partner.Contact, error) {
	if c, ok := m.contacts[id]; ok {
		return &c, nil
	}
	return nil, shared.ErrNotFound
}

func (m memContacts) FindByExternalRef(_ context.Context, ref shared.ExternalRef) (*partner.Contact, error) {
	for _, c := range m.contacts {
		if c.ExternalRef == ref {
			return &c, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m memContacts) FindByClientAndEmail(_ context.Context, clientID uuid.UUID, email string) (*partner.Contact, error) {
	for _, c := range m.contacts {
		if c.ClientID == clientID && strings.EqualFold(c.Email, email) {
			return &c, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m memContacts) FindByClient(_ context.Context, clientID uuid.UUID) ([]partner.Contact, error) {
	var out []partner.Contact
	for _, c := range m.contacts {
		if c.ClientID == clientID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m memContacts) CountBySource(context.Context) (map[shared.Source]int64, error) {
	out := map[shared.Source]int64{}
	for _, c := range m.contacts {
		out[c.Source]++
	}
	return out, nil
}

func (m memContacts) Save(_ context.Context, c *partner.Contact) error {
	m.contacts[c.ID] = *c
	return nil
}

func (m memContacts) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.contacts, id)
	return nil
}

type memInvoices struct{ *memStore }

func (m memInvoices) FindByID(_ context.Context, id uuid.UUID) (*invoicing.Invoice, error) {
	if inv, ok := m.invoices[id]; ok {
		return &inv, nil
	}
	return nil, shared.ErrNotFound
}

func (m memInvoices) FindByExternalRef(_ context.Context, ref shared.ExternalRef) (*invoicing.Invoice, error) {
	for _, inv := range m.invoices {
		if inv.ExternalRef == ref {
			return &inv, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m memInvoices) FindByNumberForSource(_ context.Context, number string, source shared.Source) (*invoicing.Invoice, error) {
	var found []invoicing.Invoice
	for _, inv := range m.invoices {
		if inv.InvoiceNumber == number && (!inv.IsLinked() || inv.Source == source) {
			found = append(found, inv)
		}
	}
	if len(found) == 0 {
		return nil, shared.ErrNotFound
	}
	sort.Slice(found, func(i, j int) bool { return found[i].CreatedAt.Before(found[j].CreatedAt) })
	return &found[0], nil
}

func (m memInvoices) FindAll(context.Context, shared.Filter) ([]invoicing.Invoice, error) {
	out := make([]invoicing.Invoice, 0, len(m.invoices))
	for _, inv := range m.invoices {
		out = append(out, inv)
	}
	return out, nil
}

func (m memInvoices) Count(context.Context, shared.Filter) (int64, error) {
	return int64(len(m.invoices)), nil
}

func (m memInvoices) CountBySource(context.Context) (map[shared.Source]int64, error) {
	out := map[shared.Source]int64{}
	for _, inv := range m.invoices {
		out[inv.Source]++
	}
	return out, nil
}

func (m memInvoices) LastSyncedAt(context.Context) (*time.Time, error) {
	var last *time.Time
	for _, inv := range m.invoices {
		if inv.Source == shared.SourceManual {
			continue
		}
		if t := inv.UpdatedAt; last == nil || t.After(*last) {
			last = &t
		}
	}
	return last, nil
}

func (m memInvoices) Save(_ context.Context, inv *invoicing.Invoice) error {
	stored := *inv
	stored.Items = nil
	m.invoices[inv.ID] = stored
	return nil
}

func (m memInvoices) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.invoices, id)
	return nil
}

type memItems struct{ *memStore }

func (m memItems) FindByExternalRef(_ context.Context, ref shared.ExternalRef) (*invoicing.InvoiceItem, error) {
	for _, it := range m.items {
		if it.ExternalRef == ref {
			return &it, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m memItems) FindByInvoiceAndLine(_ context.Context, invoiceID uuid.UUID, line int) (*invoicing.InvoiceItem, error) {
	for _, it := range m.items {
		if it.InvoiceID == invoiceID && it.LineNumber == line {
			return &it, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m memItems) FindByInvoice(_ context.Context, invoiceID uuid.UUID) ([]invoicing.InvoiceItem, error) {
	var out []invoicing.InvoiceItem
	for _, it := range m.items {
		if it.InvoiceID == invoiceID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LineNumber < out[j].LineNumber })
	return out, nil
}

func (m memItems) CountBySource(context.Context) (map[shared.Source]int64, error) {
	out := map[shared.Source]int64{}
	for _, it := range m.items {
		out[it.Source]++
	}
	return out, nil
}

func (m memItems) Save(_ context.Context, it *invoicing.InvoiceItem) error {
	if it.ProductName == "FAIL" {
		return shared.NewDomainError("STORAGE_ERROR", "line rejected")
	}
	m.items[it.ID] = *it
	return nil
}

// snapshotTx restores the store when fn fails, like a rolled back transaction
type snapshotTx struct {
	store *memStore
	calls int
}

func (t *snapshotTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	saved := t.store.clone()
	if err := fn(ctx); err != nil {
		*t.store = *saved
		return err
	}
	return nil
}

func (m *memStore) clone() *memStore {
	c := newMemStore()
	c.failSave = m.failSave
	for k, v := range m.clients {
		c.clients[k] = v
	}
	for k, v := range m.contacts {
		c.contacts[k] = v
	}
	for k, v := range m.invoices {
		c.invoices[k] = v
	}
	for k, v := range m.items {
		c.items[k] = v
	}
	return c
}
