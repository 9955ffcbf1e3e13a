package models

import (
	"github.com/google/uuid"

	"github.com/erp/factory/internal/domain/partner"
)

// ClientModel is the persistence model for the Client domain entity.
type ClientModel struct {
	AggregateModel
	ExternalRefColumns
	Name     string             `gorm:"type:varchar(255);not null"`
	Type     partner.ClientType `gorm:"type:varchar(20);not null;default:'customer'"`
	Kind     partner.ClientKind `gorm:"type:varchar(20);not null;default:'company'"`
	TaxCode  string             `gorm:"type:varchar(20);index"`
	KPP      string             `gorm:"column:kpp;type:varchar(20)"`
	Email    string             `gorm:"type:varchar(200)"`
	Phone    string             `gorm:"type:varchar(50)"`
	Address  string             `gorm:"type:text"`
	IsActive bool               `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts the persistence model to a domain Client entity.
func (m *ClientModel) ToDomain() *partner.Client {
	return &partner.Client{
		BaseAggregateRoot: m.ToAggregateRoot(),
		ExternalRef:       m.Ref(),
		Name:              m.Name,
		Type:              m.Type,
		Kind:              m.Kind,
		TaxCode:           m.TaxCode,
		KPP:               m.KPP,
		Email:             m.Email,
		Phone:             m.Phone,
		Address:           m.Address,
		IsActive:          m.IsActive,
	}
}

// ClientModelFromDomain creates a persistence model from a domain Client entity.
func ClientModelFromDomain(c *partner.Client) *ClientModel {
	m := &ClientModel{
		ExternalRefColumns: ExternalRefFromDomain(c.ExternalRef),
		Name:               c.Name,
		Type:               c.Type,
		Kind:               c.Kind,
		TaxCode:            c.TaxCode,
		KPP:                c.KPP,
		Email:              c.Email,
		Phone:              c.Phone,
		Address:            c.Address,
		IsActive:           c.IsActive,
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}

// ContactModel is the persistence model for a client contact person.
type ContactModel struct {
	AggregateModel
	ExternalRefColumns
	ClientID  uuid.UUID `gorm:"type:uuid;not null;index"`
	FirstName string    `gorm:"type:varchar(100)"`
	LastName  string    `gorm:"type:varchar(100)"`
	Position  string    `gorm:"type:varchar(100)"`
	Email     string    `gorm:"type:varchar(200);index"`
	Phone     string    `gorm:"type:varchar(50)"`
	IsPrimary bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (ContactModel) TableName() string {
	return "contacts"
}

// ToDomain converts the persistence model to a domain Contact entity.
func (m *ContactModel) ToDomain() *partner.Contact {
	return &partner.Contact{
		BaseAggregateRoot: m.ToAggregateRoot(),
		ExternalRef:       m.Ref(),
		ClientID:          m.ClientID,
		FirstName:         m.FirstName,
		LastName:          m.LastName,
		Position:          m.Position,
		Email:             m.Email,
		Phone:             m.Phone,
		IsPrimary:         m.IsPrimary,
	}
}

// ContactModelFromDomain creates a persistence model from a domain Contact entity.
func ContactModelFromDomain(c *partner.Contact) *ContactModel {
	m := &ContactModel{
		ExternalRefColumns: ExternalRefFromDomain(c.ExternalRef),
		ClientID:           c.ClientID,
		FirstName:          c.FirstName,
		LastName:           c.LastName,
		Position:           c.Position,
		Email:              c.Email,
		Phone:              c.Phone,
		IsPrimary:          c.IsPrimary,
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}
