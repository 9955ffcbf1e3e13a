package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/erp/factory/internal/domain/shared"
)

// BaseModel provides common persistence fields for all models.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel extends BaseModel with the aggregate version.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot populates AggregateModel from domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Version = a.Version
}

// ToAggregateRoot converts AggregateModel to domain BaseAggregateRoot
func (m *AggregateModel) ToAggregateRoot() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{BaseEntity: m.BaseModel.ToDomain(), Version: m.Version}
}

// ExternalRefColumns stores the link to an external system record.
// The pair is unique per table when ExternalID is not empty. Those partial
// indexes are created by the migrations and by ExternalRefIndexes.
type ExternalRefColumns struct {
	ExternalID string        `gorm:"type:varchar(100);not null;default:''"`
	Source     shared.Source `gorm:"type:varchar(20);not null;default:'manual';index"`
}

// Ref converts the columns to a domain ExternalRef
func (c ExternalRefColumns) Ref() shared.ExternalRef {
	return shared.ExternalRef{ExternalID: c.ExternalID, Source: c.Source}
}

// ExternalRefFromDomain builds the columns from a domain ExternalRef
func ExternalRefFromDomain(r shared.ExternalRef) ExternalRefColumns {
	if r.Source == "" {
		r.Source = shared.SourceManual
	}
	return ExternalRefColumns{ExternalID: r.ExternalID, Source: r.Source}
}

// ExternalRefIndexes returns the partial unique index statements for the tables
// carrying external references. Both postgres and sqlite accept them.
func ExternalRefIndexes() []string {
	tables := []string{"clients", "contacts", "invoices", "invoice_items"}
	out := make([]string, len(tables))
	for i, t := range tables {
		out[i] = "CREATE UNIQUE INDEX IF NOT EXISTS idx_" + t + "_external_ref ON " + t +
			" (external_id, source) WHERE external_id <> ''"
	}
	return out
}
