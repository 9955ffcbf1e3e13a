package syncapp

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/erp/factory/internal/domain/catalog"
	"github.com/erp/factory/internal/domain/invoicing"
	"github.com/erp/factory/internal/domain/partner"
	"github.com/erp/factory/internal/domain/shared"
)

// ItemRecorder counts reconciled records per entity and outcome
type ItemRecorder interface {
	RecordSyncItem(ctx context.Context, entity string, source string, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) RecordSyncItem(context.Context, string, string, string) {}

// Service reconciles external-system payloads with local records.
// Each record is matched by (externalId, source) first and by a natural key second.
type Service struct {
	clients  partner.ClientRepository
	contacts partner.ContactRepository
	invoices invoicing.InvoiceRepository
	items    invoicing.InvoiceItemRepository
	products catalog.ProductRepository
	tx       shared.TxManager
	recorder ItemRecorder
	logger   *zap.Logger
}

// Deps groups the collaborators of Service
type Deps struct {
	Clients  partner.ClientRepository
	Contacts partner.ContactRepository
	Invoices invoicing.InvoiceRepository
	Items    invoicing.InvoiceItemRepository
	// Products is optional; when set, invoice lines with a productSku are linked.
	Products catalog.ProductRepository
	Tx       shared.TxManager
	Recorder ItemRecorder
	Logger   *zap.Logger
}

// NewService creates a new sync Service
func NewService(d Deps) *Service {
	if d.Recorder == nil {
		d.Recorder = nopRecorder{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return &Service{
		clients:  d.Clients,
		contacts: d.Contacts,
		invoices: d.Invoices,
		items:    d.Items,
		products: d.Products,
		tx:       d.Tx,
		recorder: d.Recorder,
		logger:   d.Logger,
	}
}

func externalRef(id ID, source string) (shared.ExternalRef, error) {
	if source == "" {
		return shared.ExternalRef{}, shared.NewValidationError("source", "This field is required")
	}
	ref, err := shared.NewExternalRef(id.String(), shared.Source(source))
	if err != nil {
		return shared.ExternalRef{}, err
	}
	if !ref.IsLinked() {
		return shared.ExternalRef{}, shared.NewValidationError("externalId", "This field is required")
	}
	return ref, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}

func valueOr[T any](ptr *T, def T) T {
	if ptr != nil {
		return *ptr
	}
	return def
}

func (s *Service) record(ctx context.Context, res *UpsertResult) {
	s.recorder.RecordSyncItem(ctx, string(res.Entity), string(res.Source), string(res.Outcome))
}

// UpsertClient reconciles one client. A client with the same tax code that is
// not yet linked to an external system is adopted instead of duplicated.
func (s *Service) UpsertClient(ctx context.Context, p ClientPayload) (*UpsertResult, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}
	var res *UpsertResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		res, err = s.upsertClient(ctx, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, res)
	return res, nil
}

func (s *Service) upsertClient(ctx context.Context, p ClientPayload) (*UpsertResult, error) {
	ref, err := externalRef(p.ExternalID, p.Source)
	if err != nil {
		return nil, err
	}
	client, err := s.matchClient(ctx, ref, valueOr(p.TaxCode, ""))
	if err != nil {
		return nil, err
	}
	outcome := OutcomeUpdated
	if client == nil {
		clientType := partner.ClientType(valueOr(p.Type, string(partner.ClientTypeCustomer)))
		if client, err = partner.NewClient(p.Name, clientType, ref); err != nil {
			return nil, err
		}
		outcome = OutcomeCreated
	} else {
		if err := client.Rename(p.Name); err != nil {
			return nil, err
		}
		if p.Type != nil {
			if err := client.SetType(partner.ClientType(*p.Type)); err != nil {
				return nil, err
			}
		}
		client.Link(ref)
	}
	if p.Kind != nil {
		if err := client.SetKind(partner.ClientKind(*p.Kind)); err != nil {
			return nil, err
		}
	}
	if err := applyClientDetails(client, p.TaxCode, p.KPP, p.Email, p.Phone, p.Address); err != nil {
		return nil, err
	}
	if p.IsActive != nil {
		client.SetActive(*p.IsActive)
	}
	if err := s.clients.Save(ctx, client); err != nil {
		return nil, err
	}
	return &UpsertResult{Entity: EntityClient, ID: client.ID, ExternalID: ref.ExternalID, Source: ref.Source, Outcome: outcome}, nil
}

// UpsertCompany reconciles a legal entity, stored as a client of kind company
func (s *Service) UpsertCompany(ctx context.Context, p CompanyPayload) (*UpsertResult, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}
	var res *UpsertResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		res, err = s.upsertCompany(ctx, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, res)
	return res, nil
}

func (s *Service) upsertCompany(ctx context.Context, p CompanyPayload) (*UpsertResult, error) {
	ref, err := externalRef(p.ExternalID, p.Source)
	if err != nil {
		return nil, err
	}
	client, err := s.matchClient(ctx, ref, p.TaxCode)
	if err != nil {
		return nil, err
	}
	outcome := OutcomeUpdated
	if client == nil {
		clientType := partner.ClientType(valueOr(p.Type, string(partner.ClientTypeCustomer)))
		if client, err = partner.NewClient(p.Name, clientType, ref); err != nil {
			return nil, err
		}
		outcome = OutcomeCreated
	} else {
		if err := client.Rename(p.Name); err != nil {
			return nil, err
		}
		if p.Type != nil {
			if err := client.SetType(partner.ClientType(*p.Type)); err != nil {
				return nil, err
			}
		}
		client.Link(ref)
	}
	if err := client.SetKind(partner.ClientKindCompany); err != nil {
		return nil, err
	}
	if err := applyClientDetails(client, &p.TaxCode, p.KPP, p.Email, p.Phone, p.Address); err != nil {
		return nil, err
	}
	if err := s.clients.Save(ctx, client); err != nil {
		return nil, err
	}
	return &UpsertResult{Entity: EntityCompany, ID: client.ID, ExternalID: ref.ExternalID, Source: ref.Source, Outcome: outcome}, nil
}

// matchClient returns nil when no client matches
func (s *Service) matchClient(ctx context.Context, ref shared.ExternalRef, taxCode string) (*partner.Client, error) {
	client, err := s.clients.FindByExternalRef(ctx, ref)
	if err == nil {
		return client, nil
	}
	if !isNotFound(err) {
		return nil, err
	}
	if taxCode = strings.TrimSpace(taxCode); taxCode == "" {
		return nil, nil
	}
	// clients linked to another record keep their link
	client, err = s.clients.FindUnlinkedByTaxCode(ctx, taxCode)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return client, nil
}

func applyClientDetails(c *partner.Client, taxCode, kpp, email, phone, address *string) error {
	if taxCode != nil || kpp != nil {
		if err := c.SetTaxCodes(valueOr(taxCode, c.TaxCode), valueOr(kpp, c.KPP)); err != nil {
			return err
		}
	}
	if email != nil || phone != nil || address != nil {
		return c.SetContact(valueOr(email, c.Email), valueOr(phone, c.Phone), valueOr(address, c.Address))
	}
	return nil
}

// resolveClient finds the parent client of a contact or invoice
func (s *Service) resolveClient(ctx context.Context, externalID ID, taxCode string, source shared.Source) (*partner.Client, error) {
	if externalID != "" {
		client, err := s.clients.FindByExternalRef(ctx, shared.ExternalRef{ExternalID: externalID.String(), Source: source})
		if err == nil {
			return client, nil
		}
		if !isNotFound(err) {
			return nil, err
		}
		if taxCode == "" {
			return nil, shared.NotFoundError("Client", externalID.String())
		}
	}
	client, err := s.clients.FindByTaxCode(ctx, taxCode)
	if err != nil {
		if isNotFound(err) {
			return nil, shared.NotFoundError("Client with tax code", taxCode)
		}
		return nil, err
	}
	return client, nil
}

// UpsertContact reconciles a contact. Without an external match the contact is
// matched by email within its client.
func (s *Service) UpsertContact(ctx context.Context, p ContactPayload) (*UpsertResult, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}
	var res *UpsertResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		res, err = s.upsertContact(ctx, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, res)
	return res, nil
}

func (s *Service) upsertContact(ctx context.Context, p ContactPayload) (*UpsertResult, error) {
	ref, err := externalRef(p.ExternalID, p.Source)
	if err != nil {
		return nil, err
	}
	client, err := s.resolveClient(ctx, p.ClientExternalID, p.ClientTaxCode, ref.Source)
	if err != nil {
		return nil, err
	}

	contact, err := s.contacts.FindByExternalRef(ctx, ref)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	if contact == nil && p.Email != nil && *p.Email != "" {
		contact, err = s.contacts.FindByClientAndEmail(ctx, client.ID, strings.TrimSpace(*p.Email))
		if err != nil && !isNotFound(err) {
			return nil, err
		}
	}

	outcome := OutcomeUpdated
	if contact == nil {
		if contact, err = partner.NewContact(client.ID, valueOr(p.FirstName, ""), valueOr(p.LastName, ""), ref); err != nil {
			return nil, err
		}
		outcome = OutcomeCreated
	} else {
		if p.FirstName != nil || p.LastName != nil {
			if err := contact.Rename(valueOr(p.FirstName, contact.FirstName), valueOr(p.LastName, contact.LastName)); err != nil {
				return nil, err
			}
		}
		contact.ClientID = client.ID
		contact.Link(ref)
	}
	if p.Position != nil || p.Email != nil || p.Phone != nil {
		if err := contact.SetDetails(valueOr(p.Position, contact.Position), valueOr(p.Email, contact.Email), valueOr(p.Phone, contact.Phone)); err != nil {
			return nil, err
		}
	}
	if p.IsPrimary != nil {
		contact.SetPrimary(*p.IsPrimary)
	}
	if err := s.contacts.Save(ctx, contact); err != nil {
		return nil, err
	}
	return &UpsertResult{Entity: EntityContact, ID: contact.ID, ExternalID: ref.ExternalID, Source: ref.Source, Outcome: outcome}, nil
}

// UpsertInvoice reconciles an invoice header and any nested lines in one
// transaction. Without an external match the invoice is matched by number.
func (s *Service) UpsertInvoice(ctx context.Context, p InvoicePayload) (*UpsertResult, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}
	var res *UpsertResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		res, err = s.upsertInvoice(ctx, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, res)
	for i := range res.Items {
		s.record(ctx, &res.Items[i])
	}
	return res, nil
}

func (s *Service) upsertInvoice(ctx context.Context, p InvoicePayload) (*UpsertResult, error) {
	ref, err := externalRef(p.ExternalID, p.Source)
	if err != nil {
		return nil, err
	}
	client, err := s.resolveClient(ctx, p.ClientExternalID, p.ClientTaxCode, ref.Source)
	if err != nil {
		return nil, err
	}

	invoice, err := s.invoices.FindByExternalRef(ctx, ref)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	if invoice == nil {
		invoice, err = s.invoices.FindByNumberForSource(ctx, strings.TrimSpace(p.InvoiceNumber), ref.Source)
		if err != nil && !isNotFound(err) {
			return nil, err
		}
	}

	outcome := OutcomeUpdated
	if invoice == nil {
		if invoice, err = invoicing.NewInvoice(p.InvoiceNumber, client.ID, ref); err != nil {
			return nil, err
		}
		outcome = OutcomeCreated
	} else {
		if err := invoice.SetNumber(p.InvoiceNumber); err != nil {
			return nil, err
		}
		invoice.SetClient(client.ID)
		invoice.Link(ref)
	}
	invoice.SetDates(p.IssueDate.Ptr(), p.DueDate.Ptr())
	if p.TotalAmount.Valid || p.Currency != nil {
		if err := invoice.SetAmount(p.TotalAmount.Or(invoice.TotalAmount), valueOr(p.Currency, "")); err != nil {
			return nil, err
		}
	}
	if p.Status != nil {
		if err := invoice.SetStatus(MapInvoiceStatus(ref.Source, *p.Status)); err != nil {
			return nil, err
		}
	}
	if p.Comment != nil {
		invoice.SetComment(*p.Comment)
	}
	if err := s.invoices.Save(ctx, invoice); err != nil {
		return nil, err
	}

	res := &UpsertResult{Entity: EntityInvoice, ID: invoice.ID, ExternalID: ref.ExternalID, Source: ref.Source, Outcome: outcome}
	if len(p.Items) == 0 {
		return res, nil
	}
	for i, item := range p.Items {
		if item.Source == "" {
			item.Source = string(ref.Source)
		}
		itemRes, err := s.upsertItem(ctx, invoice, item)
		if err != nil {
			return nil, itemError(i, err)
		}
		res.Items = append(res.Items, *itemRes)
	}
	// lines are authoritative for the total unless one was sent
	if !p.TotalAmount.Valid {
		lines, err := s.items.FindByInvoice(ctx, invoice.ID)
		if err != nil {
			return nil, err
		}
		if err := invoice.SetAmount(invoicing.SumItems(lines), ""); err != nil {
			return nil, err
		}
		if err := s.invoices.Save(ctx, invoice); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// itemError prefixes the field paths of a nested line's validation error
func itemError(index int, err error) error {
	var verr *shared.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	out := &shared.ValidationError{Fields: make([]shared.FieldError, len(verr.Fields))}
	for i, f := range verr.Fields {
		out.Fields[i] = shared.FieldError{Field: "items[" + strconv.Itoa(index) + "]." + f.Field, Message: f.Message}
	}
	return out
}

// UpsertInvoiceItem reconciles a single invoice line. The invoice must already
// be synchronized from the same source.
func (s *Service) UpsertInvoiceItem(ctx context.Context, p InvoiceItemPayload) (*UpsertResult, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}
	if p.InvoiceExternalID == "" {
		return nil, shared.NewValidationError("invoiceExternalId", "This field is required")
	}
	if p.Source == "" {
		return nil, shared.NewValidationError("source", "This field is required")
	}
	var res *UpsertResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		parent := shared.ExternalRef{ExternalID: p.InvoiceExternalID.String(), Source: shared.Source(p.Source)}
		invoice, err := s.invoices.FindByExternalRef(ctx, parent)
		if err != nil {
			if isNotFound(err) {
				return shared.NotFoundError("Invoice", p.InvoiceExternalID.String())
			}
			return err
		}
		res, err = s.upsertItem(ctx, invoice, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, res)
	return res, nil
}

func (s *Service) upsertItem(ctx context.Context, invoice *invoicing.Invoice, p InvoiceItemPayload) (*UpsertResult, error) {
	ref, err := externalRef(p.ExternalID, p.Source)
	if err != nil {
		return nil, err
	}
	item, err := s.items.FindByExternalRef(ctx, ref)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	if item == nil {
		item, err = s.items.FindByInvoiceAndLine(ctx, invoice.ID, p.LineNumber.Value)
		if err != nil && !isNotFound(err) {
			return nil, err
		}
	}

	outcome := OutcomeUpdated
	if item == nil {
		if item, err = invoicing.NewInvoiceItem(invoice.ID, p.LineNumber.Value, valueOr(p.ProductName, ""), ref); err != nil {
			return nil, err
		}
		outcome = OutcomeCreated
	} else {
		item.InvoiceID = invoice.ID
		item.LineNumber = p.LineNumber.Value
		if p.ProductName != nil && strings.TrimSpace(*p.ProductName) != "" {
			item.ProductName = strings.TrimSpace(*p.ProductName)
		}
		item.ExternalRef = ref
	}
	if p.Quantity.Valid || p.Price.Valid || p.Total.Valid {
		// a missing total is recomputed from quantity and price
		if err := item.SetAmounts(p.Quantity.Or(item.Quantity), p.Price.Or(item.Price), p.Total.Or(decimal.Zero)); err != nil {
			return nil, err
		}
	}
	if p.VatRate.Valid {
		item.VatRate = p.VatRate.Value
	}
	if p.Unit != nil {
		item.Unit = strings.TrimSpace(*p.Unit)
	}
	if err := s.linkProduct(ctx, item, p.ProductSKU); err != nil {
		return nil, err
	}
	if err := s.items.Save(ctx, item); err != nil {
		return nil, err
	}
	return &UpsertResult{Entity: EntityInvoiceItem, ID: item.ID, ExternalID: ref.ExternalID, Source: ref.Source, Outcome: outcome}, nil
}

func (s *Service) linkProduct(ctx context.Context, item *invoicing.InvoiceItem, sku *string) error {
	if s.products == nil || sku == nil || strings.TrimSpace(*sku) == "" {
		return nil
	}
	product, err := s.products.FindBySKU(ctx, strings.TrimSpace(*sku))
	if err != nil {
		if isNotFound(err) {
			// unknown products stay unlinked; the line keeps its name
			return nil
		}
		return err
	}
	id := product.ID
	item.ProductID = &id
	return nil
}

// Stats reports record counts per source and the latest invoice sync time
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	clients, err := s.clients.CountBySource(ctx)
	if err != nil {
		return nil, err
	}
	contacts, err := s.contacts.CountBySource(ctx)
	if err != nil {
		return nil, err
	}
	invoices, err := s.invoices.CountBySource(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.items.CountBySource(ctx)
	if err != nil {
		return nil, err
	}
	last, err := s.invoices.LastSyncedAt(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{
		Clients:      clients,
		Contacts:     contacts,
		Invoices:     invoices,
		InvoiceItems: items,
		LastSyncAt:   last,
	}, nil
}
