package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/erp/factory/internal/domain/identity"
	"github.com/erp/factory/internal/infrastructure/persistence/models"
)

// GormUserRepository implements identity.UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var m models.UserModel
	if err := conn(ctx, r.db).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindByUsername finds a user by username, case-insensitively
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	var m models.UserModel
	if err := conn(ctx, r.db).First(&m, "username = ?", normalizeUsername(username)).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// ExistsByUsername checks if the username is taken
func (r *GormUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var n int64
	err := conn(ctx, r.db).Model(&models.UserModel{}).Where("username = ?", normalizeUsername(username)).Count(&n).Error
	return n > 0, err
}

// Save creates or updates a user
func (r *GormUserRepository) Save(ctx context.Context, user *identity.User) error {
	return translate(conn(ctx, r.db).Save(models.UserModelFromDomain(user)).Error)
}

// Usernames are stored lowercase by identity.NewUser
func normalizeUsername(u string) string {
	return strings.ToLower(strings.TrimSpace(u))
}
