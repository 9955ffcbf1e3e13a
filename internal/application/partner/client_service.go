package partner

import (
	"context"

	"github.com/google/uuid"

	"github.com/erp/factory/internal/domain/datatable"
	"github.com/erp/factory/internal/domain/partner"
	"github.com/erp/factory/internal/domain/shared"
)

// ClientsTableKey is the DataTable key of the clients list
const ClientsTableKey = "clients"

// ClientService handles clients and their contacts
type ClientService struct {
	repo     partner.ClientRepository
	contacts partner.ContactRepository
	table    *datatable.Table[*partner.Client]
	fetch    datatable.Fetcher[*partner.Client]
}

// NewClientService creates a new ClientService
func NewClientService(repo partner.ClientRepository, contacts partner.ContactRepository) *ClientService {
	s := &ClientService{
		repo:     repo,
		contacts: contacts,
		table:    NewClientsTable(),
	}
	s.fetch = datatable.Delegate(s.table, s.query)
	return s
}

// NewClientsTable defines the clients list columns
func NewClientsTable() *datatable.Table[*partner.Client] {
	return datatable.NewTable(ClientsTableKey, []datatable.Column[*partner.Client]{
		{Key: "name", Label: "Name", Sortable: true, Filterable: true, Value: func(c *partner.Client) any { return c.Name }},
		{Key: "type", Label: "Type", Type: datatable.ColumnStatus, Sortable: true, Filterable: true, Value: func(c *partner.Client) any { return string(c.Type) }},
		{Key: "kind", Label: "Kind", Type: datatable.ColumnStatus, Filterable: true, Value: func(c *partner.Client) any { return string(c.Kind) }},
		{Key: "taxCode", Label: "Tax code", Sortable: true, Filterable: true, Value: func(c *partner.Client) any { return c.TaxCode }},
		{Key: "email", Label: "Email", Sortable: true, Filterable: true, Value: func(c *partner.Client) any { return c.Email }},
		{Key: "phone", Label: "Phone", Filterable: true, Value: func(c *partner.Client) any { return c.Phone }},
		{Key: "source", Label: "Source", Type: datatable.ColumnStatus, Sortable: true, Filterable: true, Value: func(c *partner.Client) any { return string(c.Source) }},
		{Key: "isActive", Label: "Active", Type: datatable.ColumnBoolean, Filterable: true, Value: func(c *partner.Client) any { return c.IsActive }},
		{Key: "createdAt", Label: "Created", Type: datatable.ColumnDate, Sortable: true, Value: func(c *partner.Client) any { return c.CreatedAt }},
	},
		datatable.WithDefaultSort("name", datatable.SortAsc),
		datatable.WithHiddenColumns("kind", "createdAt"),
	)
}

// Table returns the clients table definition
func (s *ClientService) Table() *datatable.Table[*partner.Client] {
	return s.table
}

func (s *ClientService) query(ctx context.Context, q datatable.Query) ([]*partner.Client, int64, error) {
	filter := q.ToFilter()
	clients, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	rows := make([]*partner.Client, len(clients))
	for i := range clients {
		rows[i] = &clients[i]
	}
	return rows, total, nil
}

// List runs a table query in the database
func (s *ClientService) List(ctx context.Context, q datatable.Query) (datatable.Result[ClientResponse], error) {
	res, err := s.fetch(ctx, q)
	if err != nil {
		return datatable.Result[ClientResponse]{}, err
	}
	return datatable.MapResult(res, ToClientResponse), nil
}

// Export returns every client matching q
func (s *ClientService) Export(ctx context.Context, q datatable.Query) ([]*partner.Client, error) {
	return s.fetch.All(ctx, q)
}

// GetByID retrieves a client
func (s *ClientService) GetByID(ctx context.Context, id uuid.UUID) (*ClientResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToClientResponse(c)
	return &resp, nil
}

// Create creates a manual client
func (s *ClientService) Create(ctx context.Context, req CreateClientRequest) (*ClientResponse, error) {
	c, err := partner.NewClient(req.Name, partner.ClientType(req.Type), shared.ManualRef())
	if err != nil {
		return nil, err
	}
	if req.Kind != "" {
		if err := c.SetKind(partner.ClientKind(req.Kind)); err != nil {
			return nil, err
		}
	}
	if err := c.SetTaxCodes(req.TaxCode, req.KPP); err != nil {
		return nil, err
	}
	if err := c.SetContact(req.Email, req.Phone, req.Address); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	resp := ToClientResponse(c)
	return &resp, nil
}

// Update applies the supplied fields to a client
func (s *ClientService) Update(ctx context.Context, id uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if err := c.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Type != nil {
		if err := c.SetType(partner.ClientType(*req.Type)); err != nil {
			return nil, err
		}
	}
	if req.Kind != nil {
		if err := c.SetKind(partner.ClientKind(*req.Kind)); err != nil {
			return nil, err
		}
	}
	if req.TaxCode != nil || req.KPP != nil {
		if err := c.SetTaxCodes(valueOr(req.TaxCode, c.TaxCode), valueOr(req.KPP, c.KPP)); err != nil {
			return nil, err
		}
	}
	if req.Email != nil || req.Phone != nil || req.Address != nil {
		if err := c.SetContact(valueOr(req.Email, c.Email), valueOr(req.Phone, c.Phone), valueOr(req.Address, c.Address)); err != nil {
			return nil, err
		}
	}
	if req.IsActive != nil {
		c.SetActive(*req.IsActive)
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	resp := ToClientResponse(c)
	return &resp, nil
}

// Delete removes a client
func (s *ClientService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// ListContacts returns the contacts of a client
func (s *ClientService) ListContacts(ctx context.Context, clientID uuid.UUID) ([]ContactResponse, error) {
	if _, err := s.repo.FindByID(ctx, clientID); err != nil {
		return nil, err
	}
	contacts, err := s.contacts.FindByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	out := make([]ContactResponse, len(contacts))
	for i := range contacts {
		out[i] = ToContactResponse(&contacts[i])
	}
	return out, nil
}

// CreateContact adds a manual contact to a client
func (s *ClientService) CreateContact(ctx context.Context, clientID uuid.UUID, req ContactRequest) (*ContactResponse, error) {
	if _, err := s.repo.FindByID(ctx, clientID); err != nil {
		return nil, err
	}
	c, err := partner.NewContact(clientID, req.FirstName, req.LastName, shared.ManualRef())
	if err != nil {
		return nil, err
	}
	if err := c.SetDetails(req.Position, req.Email, req.Phone); err != nil {
		return nil, err
	}
	c.SetPrimary(req.IsPrimary)
	if err := s.contacts.Save(ctx, c); err != nil {
		return nil, err
	}
	resp := ToContactResponse(c)
	return &resp, nil
}

// UpdateContact replaces the editable fields of a contact
func (s *ClientService) UpdateContact(ctx context.Context, clientID, contactID uuid.UUID, req ContactRequest) (*ContactResponse, error) {
	c, err := s.findContact(ctx, clientID, contactID)
	if err != nil {
		return nil, err
	}
	if err := c.Rename(req.FirstName, req.LastName); err != nil {
		return nil, err
	}
	if err := c.SetDetails(req.Position, req.Email, req.Phone); err != nil {
		return nil, err
	}
	c.SetPrimary(req.IsPrimary)
	if err := s.contacts.Save(ctx, c); err != nil {
		return nil, err
	}
	resp := ToContactResponse(c)
	return &resp, nil
}

// DeleteContact removes a contact of a client
func (s *ClientService) DeleteContact(ctx context.Context, clientID, contactID uuid.UUID) error {
	if _, err := s.findContact(ctx, clientID, contactID); err != nil {
		return err
	}
	return s.contacts.Delete(ctx, contactID)
}

func (s *ClientService) findContact(ctx context.Context, clientID, contactID uuid.UUID) (*partner.Contact, error) {
	c, err := s.contacts.FindByID(ctx, contactID)
	if err != nil {
		return nil, err
	}
	if c.ClientID != clientID {
		return nil, shared.ErrNotFound
	}
	return c, nil
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
