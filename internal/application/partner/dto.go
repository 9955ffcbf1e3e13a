package partner

import (
	"time"

	"github.com/google/uuid"

	"github.com/erp/factory/internal/domain/partner"
)

// CreateClientRequest represents a request to create a client by hand
type CreateClientRequest struct {
	Name    string `json:"name" binding:"required,max=300"`
	Type    string `json:"type" binding:"omitempty,oneof=customer supplier both"`
	Kind    string `json:"kind" binding:"omitempty,oneof=company individual"`
	TaxCode string `json:"taxCode" binding:"max=20"`
	KPP     string `json:"kpp" binding:"max=20"`
	Email   string `json:"email" binding:"omitempty,email"`
	Phone   string `json:"phone" binding:"max=50"`
	Address string `json:"address" binding:"max=500"`
}

// UpdateClientRequest represents a partial client update
type UpdateClientRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=300"`
	Type     *string `json:"type" binding:"omitempty,oneof=customer supplier both"`
	Kind     *string `json:"kind" binding:"omitempty,oneof=company individual"`
	TaxCode  *string `json:"taxCode" binding:"omitempty,max=20"`
	KPP      *string `json:"kpp" binding:"omitempty,max=20"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone" binding:"omitempty,max=50"`
	Address  *string `json:"address" binding:"omitempty,max=500"`
	IsActive *bool   `json:"isActive"`
}

// ClientResponse represents a client in API responses
type ClientResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Kind       string    `json:"kind"`
	TaxCode    string    `json:"taxCode"`
	KPP        string    `json:"kpp"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Address    string    `json:"address"`
	ExternalID string    `json:"externalId,omitempty"`
	Source     string    `json:"source"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ToClientResponse converts a client
func ToClientResponse(c *partner.Client) ClientResponse {
	return ClientResponse{
		ID:         c.ID,
		Name:       c.Name,
		Type:       string(c.Type),
		Kind:       string(c.Kind),
		TaxCode:    c.TaxCode,
		KPP:        c.KPP,
		Email:      c.Email,
		Phone:      c.Phone,
		Address:    c.Address,
		ExternalID: c.ExternalID,
		Source:     string(c.Source),
		IsActive:   c.IsActive,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

// ContactRequest creates or fully updates a contact
type ContactRequest struct {
	FirstName string `json:"firstName" binding:"max=100"`
	LastName  string `json:"lastName" binding:"max=100"`
	Position  string `json:"position" binding:"max=100"`
	Email     string `json:"email" binding:"omitempty,email"`
	Phone     string `json:"phone" binding:"max=50"`
	IsPrimary bool   `json:"isPrimary"`
}

// ContactResponse represents a contact in API responses
type ContactResponse struct {
	ID         uuid.UUID `json:"id"`
	ClientID   uuid.UUID `json:"clientId"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	FullName   string    `json:"fullName"`
	Position   string    `json:"position"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	IsPrimary  bool      `json:"isPrimary"`
	ExternalID string    `json:"externalId,omitempty"`
	Source     string    `json:"source"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ToContactResponse converts a contact
func ToContactResponse(c *partner.Contact) ContactResponse {
	return ContactResponse{
		ID:         c.ID,
		ClientID:   c.ClientID,
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		FullName:   c.FullName(),
		Position:   c.Position,
		Email:      c.Email,
		Phone:      c.Phone,
		IsPrimary:  c.IsPrimary,
		ExternalID: c.ExternalID,
		Source:     string(c.Source),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}
