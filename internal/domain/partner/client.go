package partner

import (
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/erp/factory/internal/domain/shared"
)

// ClientType distinguishes customers from suppliers
type ClientType string

const (
	ClientTypeCustomer ClientType = "customer"
	ClientTypeSupplier ClientType = "supplier"
	ClientTypeBoth     ClientType = "both"
)

// IsValid checks if the type is known
func (t ClientType) IsValid() bool {
	return t == ClientTypeCustomer || t == ClientTypeSupplier || t == ClientTypeBoth
}

// ClientKind distinguishes legal entities from private persons
type ClientKind string

const (
	ClientKindCompany    ClientKind = "company"
	ClientKindIndividual ClientKind = "individual"
)

// IsValid checks if the kind is known
func (k ClientKind) IsValid() bool {
	return k == ClientKindCompany || k == ClientKindIndividual
}

// Client is customer or supplier master data
type Client struct {
	shared.BaseAggregateRoot
	shared.ExternalRef
	Name     string
	Type     ClientType
	Kind     ClientKind
	TaxCode  string
	KPP      string
	Email    string
	Phone    string
	Address  string
	IsActive bool
}

// NewClient creates an active client
func NewClient(name string, clientType ClientType, ref shared.ExternalRef) (*Client, error) {
	if err := validateClientName(name); err != nil {
		return nil, err
	}
	if clientType == "" {
		clientType = ClientTypeCustomer
	}
	if !clientType.IsValid() {
		return nil, shared.NewDomainError("INVALID_CLIENT_TYPE", "Client type must be customer, supplier or both")
	}
	if !ref.Source.IsValid() {
		ref.Source = shared.SourceManual
	}
	return &Client{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ExternalRef:       ref,
		Name:              strings.TrimSpace(name),
		Type:              clientType,
		Kind:              ClientKindCompany,
		IsActive:          true,
	}, nil
}

// Rename sets the client name
func (c *Client) Rename(name string) error {
	if err := validateClientName(name); err != nil {
		return err
	}
	c.Name = strings.TrimSpace(name)
	c.Touch()
	return nil
}

// SetType sets customer/supplier role
func (c *Client) SetType(t ClientType) error {
	if !t.IsValid() {
		return shared.NewDomainError("INVALID_CLIENT_TYPE", "Client type must be customer, supplier or both")
	}
	c.Type = t
	c.Touch()
	return nil
}

// SetKind sets company/individual
func (c *Client) SetKind(k ClientKind) error {
	if !k.IsValid() {
		return shared.NewDomainError("INVALID_CLIENT_KIND", "Client kind must be company or individual")
	}
	c.Kind = k
	c.Touch()
	return nil
}

// SetTaxCodes sets the taxpayer number and registration reason code
func (c *Client) SetTaxCodes(taxCode, kpp string) error {
	taxCode, kpp = strings.TrimSpace(taxCode), strings.TrimSpace(kpp)
	if len(taxCode) > 20 || len(kpp) > 20 {
		return shared.NewDomainError("INVALID_TAX_CODE", "Tax codes cannot exceed 20 characters")
	}
	c.TaxCode, c.KPP = taxCode, kpp
	c.Touch()
	return nil
}

// SetContact sets email, phone and address
func (c *Client) SetContact(email, phone, address string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	c.Email, c.Phone, c.Address = strings.TrimSpace(email), strings.TrimSpace(phone), address
	c.Touch()
	return nil
}

// SetActive activates or deactivates the client
func (c *Client) SetActive(active bool) {
	c.IsActive = active
	c.Touch()
}

// Link stamps the external reference on the client
func (c *Client) Link(ref shared.ExternalRef) {
	c.ExternalRef = ref
	c.Touch()
}

// IsSupplier returns true if the client can deliver goods
func (c *Client) IsSupplier() bool {
	return c.Type == ClientTypeSupplier || c.Type == ClientTypeBoth
}

func validateClientName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Client name cannot be empty")
	}
	if len(name) > 300 {
		return shared.NewDomainError("INVALID_NAME", "Client name cannot exceed 300 characters")
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email address")
	}
	return nil
}

// Contact is a person at a client
type Contact struct {
	shared.BaseAggregateRoot
	shared.ExternalRef
	ClientID  uuid.UUID
	FirstName string
	LastName  string
	Position  string
	Email     string
	Phone     string
	IsPrimary bool
}

// NewContact creates a contact for a client
func NewContact(clientID uuid.UUID, firstName, lastName string, ref shared.ExternalRef) (*Contact, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if !ref.Source.IsValid() {
		ref.Source = shared.SourceManual
	}
	c := &Contact{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ExternalRef:       ref,
		ClientID:          clientID,
	}
	if err := c.setName(firstName, lastName); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Contact) setName(first, last string) error {
	first, last = strings.TrimSpace(first), strings.TrimSpace(last)
	if first == "" && last == "" {
		return shared.NewDomainError("INVALID_NAME", "Contact name cannot be empty")
	}
	c.FirstName, c.LastName = first, last
	return nil
}

// Rename updates the contact name
func (c *Contact) Rename(first, last string) error {
	if err := c.setName(first, last); err != nil {
		return err
	}
	c.Touch()
	return nil
}

// SetDetails sets position, email and phone
func (c *Contact) SetDetails(position, email, phone string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	c.Position, c.Email, c.Phone = position, strings.TrimSpace(email), strings.TrimSpace(phone)
	c.Touch()
	return nil
}

// SetPrimary marks the contact as the client's main contact
func (c *Contact) SetPrimary(primary bool) {
	c.IsPrimary = primary
	c.Touch()
}

// Link stamps the external reference on the contact
func (c *Contact) Link(ref shared.ExternalRef) {
	c.ExternalRef = ref
	c.Touch()
}

// FullName returns "First Last"
func (c *Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}
