package invoicing

import (
	"context"

	"github.com/google/uuid"

	"github.com/erp/factory/internal/domain/datatable"
	"github.com/erp/factory/internal/domain/invoicing"
	"github.com/erp/factory/internal/domain/partner"
	"github.com/erp/factory/internal/domain/shared"
)

// InvoicesTableKey is the DataTable key of the invoices list
const InvoicesTableKey = "invoices"

// InvoiceService reads and deletes invoices. Invoices are created and
// changed by synchronization only.
type InvoiceService struct {
	repo       invoicing.InvoiceRepository
	items      invoicing.InvoiceItemRepository
	clientRepo partner.ClientRepository
	table      *datatable.Table[*InvoiceRow]
	fetch      datatable.Fetcher[*InvoiceRow]
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(repo invoicing.InvoiceRepository, items invoicing.InvoiceItemRepository, clientRepo partner.ClientRepository) *InvoiceService {
	s := &InvoiceService{
		repo:       repo,
		items:      items,
		clientRepo: clientRepo,
		table:      NewInvoicesTable(),
	}
	s.fetch = datatable.Delegate(s.table, s.query)
	return s
}

// NewInvoicesTable defines the invoices list columns
func NewInvoicesTable() *datatable.Table[*InvoiceRow] {
	return datatable.NewTable(InvoicesTableKey, []datatable.Column[*InvoiceRow]{
		{Key: "invoiceNumber", Label: "Invoice #", Sortable: true, Filterable: true, Value: func(r *InvoiceRow) any { return r.Invoice.InvoiceNumber }},
		{Key: "client", Label: "Client", Value: func(r *InvoiceRow) any { return r.ClientName }},
		{Key: "issueDate", Label: "Issued", Type: datatable.ColumnDate, Sortable: true, Value: func(r *InvoiceRow) any { return datatable.Deref(r.Invoice.IssueDate) }},
		{Key: "dueDate", Label: "Due", Type: datatable.ColumnDate, Sortable: true, Value: func(r *InvoiceRow) any { return datatable.Deref(r.Invoice.DueDate) }},
		{Key: "totalAmount", Label: "Total", Type: datatable.ColumnCurrency, Sortable: true, Value: func(r *InvoiceRow) any { return r.Invoice.TotalAmount }},
		{Key: "currency", Label: "Currency", Filterable: true, Value: func(r *InvoiceRow) any { return r.Invoice.Currency }},
		{Key: "status", Label: "Status", Type: datatable.ColumnStatus, Sortable: true, Filterable: true, Value: func(r *InvoiceRow) any { return string(r.Invoice.Status) }},
		{Key: "source", Label: "Source", Type: datatable.ColumnStatus, Sortable: true, Filterable: true, Value: func(r *InvoiceRow) any { return string(r.Invoice.Source) }},
	},
		datatable.WithDefaultSort("issueDate", datatable.SortDesc),
		datatable.WithHiddenColumns("currency"),
	)
}

// Table returns the invoices table definition
func (s *InvoiceService) Table() *datatable.Table[*InvoiceRow] {
	return s.table
}

func (s *InvoiceService) query(ctx context.Context, q datatable.Query) ([]*InvoiceRow, int64, error) {
	filter := q.ToFilter()
	invoices, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.join(ctx, invoices)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (s *InvoiceService) join(ctx context.Context, invoices []invoicing.Invoice) ([]*InvoiceRow, error) {
	ids := make([]uuid.UUID, len(invoices))
	for i, inv := range invoices {
		ids[i] = inv.ClientID
	}
	names := map[uuid.UUID]string{}
	if ids = shared.UniqueIDs(ids); len(ids) > 0 {
		clients, err := s.clientRepo.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, c := range clients {
			names[c.ID] = c.Name
		}
	}
	rows := make([]*InvoiceRow, len(invoices))
	for i := range invoices {
		rows[i] = &InvoiceRow{Invoice: &invoices[i], ClientName: names[invoices[i].ClientID]}
	}
	return rows, nil
}

// List runs a table query in the database
func (s *InvoiceService) List(ctx context.Context, q datatable.Query) (datatable.Result[InvoiceResponse], error) {
	res, err := s.fetch(ctx, q)
	if err != nil {
		return datatable.Result[InvoiceResponse]{}, err
	}
	return datatable.MapResult(res, ToInvoiceResponse), nil
}

// Export returns every invoice matching q
func (s *InvoiceService) Export(ctx context.Context, q datatable.Query) ([]*InvoiceRow, error) {
	return s.fetch.All(ctx, q)
}

// GetByID retrieves an invoice with its items ordered by line number
func (s *InvoiceService) GetByID(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.items.FindByInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.Items = items
	rows, err := s.join(ctx, []invoicing.Invoice{*inv})
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(rows[0])
	return &resp, nil
}

// Delete removes an invoice and its items
func (s *InvoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
