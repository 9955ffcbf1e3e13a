package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/erp/factory/internal/domain/partner"
	"github.com/erp/factory/internal/domain/shared"
	"github.com/erp/factory/internal/infrastructure/persistence/models"
)

var clientColumns = columnSet{
	columns: map[string]column{
		"name":      {"name", kindText},
		"type":      {"type", kindExact},
		"kind":      {"kind", kindExact},
		"taxCode":   {"tax_code", kindText},
		"email":     {"email", kindText},
		"phone":     {"phone", kindText},
		"source":    {"source", kindExact},
		"isActive":  {"is_active", kindBool},
		"createdAt": {"created_at", kindValue},
	},
	search:      []string{"name", "tax_code", "email", "phone", "type", "kind", "source"},
	defaultSort: "name",
	defaultDir:  "asc",
}

// GormClientRepository implements partner.ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByID finds a client by ID
func (r *GormClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Client, error) {
	var m models.ClientModel
	if err := conn(ctx, r.db).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindByIDs loads the clients with the given IDs; missing IDs are skipped.
func (r *GormClientRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]partner.Client, error) {
	if len(ids) == 0 {
		return []partner.Client{}, nil
	}
	var rows []models.ClientModel
	if err := conn(ctx, r.db).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return clientsToDomain(rows), nil
}

// FindByExternalRef finds the client linked to an external record
func (r *GormClientRepository) FindByExternalRef(ctx context.Context, ref shared.ExternalRef) (*partner.Client, error) {
	var m models.ClientModel
	err := conn(ctx, r.db).First(&m, "external_id = ? AND source = ?", ref.ExternalID, ref.Source).Error
	if err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindByTaxCode returns the oldest client with the tax code
func (r *GormClientRepository) FindByTaxCode(ctx context.Context, taxCode string) (*partner.Client, error) {
	taxCode = strings.TrimSpace(taxCode)
	if taxCode == "" {
		return nil, shared.ErrNotFound
	}
	var m models.ClientModel
	err := conn(ctx, r.db).Where("tax_code = ?", taxCode).Order("created_at ASC, id ASC").First(&m).Error
	if err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindUnlinkedByTaxCode returns the oldest client with the tax code and no external id
func (r *GormClientRepository) FindUnlinkedByTaxCode(ctx context.Context, taxCode string) (*partner.Client, error) {
	taxCode = strings.TrimSpace(taxCode)
	if taxCode == "" {
		return nil, shared.ErrNotFound
	}
	var m models.ClientModel
	err := conn(ctx, r.db).
		Where("tax_code = ? AND external_id = ''", taxCode).
		Order("created_at ASC, id ASC").
		First(&m).Error
	if err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindAll returns one page of clients
func (r *GormClientRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Client, error) {
	q := clientColumns.where(conn(ctx, r.db).Model(&models.ClientModel{}), filter)
	var rows []models.ClientModel
	if err := clientColumns.page(q, filter).Find(&rows).Error; err != nil {
		return nil, err
	}
	return clientsToDomain(rows), nil
}

// Count counts the clients matching the filter
func (r *GormClientRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var n int64
	err := clientColumns.where(conn(ctx, r.db).Model(&models.ClientModel{}), filter).Count(&n).Error
	return n, err
}

// CountBySource counts clients per source
func (r *GormClientRepository) CountBySource(ctx context.Context) (map[shared.Source]int64, error) {
	return countBySource(conn(ctx, r.db), &models.ClientModel{})
}

// Save creates or updates a client
func (r *GormClientRepository) Save(ctx context.Context, client *partner.Client) error {
	return translate(conn(ctx, r.db).Save(models.ClientModelFromDomain(client)).Error)
}

// Delete removes a client and its contacts
func (r *GormClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return atomic(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Delete(&models.ContactModel{}, "client_id = ?", id).Error; err != nil {
			return err
		}
		return deleted(tx.Delete(&models.ClientModel{}, "id = ?", id))
	})
}

func clientsToDomain(rows []models.ClientModel) []partner.Client {
	out := make([]partner.Client, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// GormContactRepository implements partner.ContactRepository using GORM
type GormContactRepository struct {
	db *gorm.DB
}

// NewGormContactRepository creates a new GormContactRepository
func NewGormContactRepository(db *gorm.DB) *GormContactRepository {
	return &GormContactRepository{db: db}
}

func (r *GormContactRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Contact, error) {
	var m models.ContactModel
	if err := conn(ctx, r.db).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

func (r *GormContactRepository) FindByExternalRef(ctx context.Context, ref shared.ExternalRef) (*partner.Contact, error) {
	var m models.ContactModel
	err := conn(ctx, r.db).First(&m, "external_id = ? AND source = ?", ref.ExternalID, ref.Source).Error
	if err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindByClientAndEmail matches the email case-insensitively
func (r *GormContactRepository) FindByClientAndEmail(ctx context.Context, clientID uuid.UUID, email string) (*partner.Contact, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, shared.ErrNotFound
	}
	var m models.ContactModel
	err := conn(ctx, r.db).Where("client_id = ? AND LOWER(email) = ?", clientID, email).
		Order("created_at ASC").First(&m).Error
	if err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindByClient lists the contacts of a client, primary first
func (r *GormContactRepository) FindByClient(ctx context.Context, clientID uuid.UUID) ([]partner.Contact, error) {
	var rows []models.ContactModel
	err := conn(ctx, r.db).Where("client_id = ?", clientID).
		Order("is_primary DESC, last_name ASC, first_name ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]partner.Contact, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

func (r *GormContactRepository) CountBySource(ctx context.Context) (map[shared.Source]int64, error) {
	return countBySource(conn(ctx, r.db), &models.ContactModel{})
}

func (r *GormContactRepository) Save(ctx context.Context, contact *partner.Contact) error {
	return translate(conn(ctx, r.db).Save(models.ContactModelFromDomain(contact)).Error)
}

func (r *GormContactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleted(conn(ctx, r.db).Delete(&models.ContactModel{}, "id = ?", id))
}
