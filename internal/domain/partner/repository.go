package partner

import (
	"context"

	"github.com/google/uuid"

	"github.com/erp/factory/internal/domain/shared"
)

// ClientRepository defines persistence for clients
type ClientRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Client, error)
	FindByExternalRef(ctx context.Context, ref shared.ExternalRef) (*Client, error)
	// FindByTaxCode returns the oldest client with the tax code.
	FindByTaxCode(ctx context.Context, taxCode string) (*Client, error)
	// FindUnlinkedByTaxCode returns the oldest client with the tax code that
	// has no external id yet.
	FindUnlinkedByTaxCode(ctx context.Context, taxCode string) (*Client, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Client, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	CountBySource(ctx context.Context) (map[shared.Source]int64, error)
	Save(ctx context.Context, client *Client) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ContactRepository defines persistence for client contacts
type ContactRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Contact, error)
	FindByExternalRef(ctx context.Context, ref shared.ExternalRef) (*Contact, error)
	FindByClientAndEmail(ctx context.Context, clientID uuid.UUID, email string) (*Contact, error)
	FindByClient(ctx context.Context, clientID uuid.UUID) ([]Contact, error)
	CountBySource(ctx context.Context) (map[shared.Source]int64, error)
	Save(ctx context.Context, contact *Contact) error
	Delete(ctx context.Context, id uuid.UUID) error
}
