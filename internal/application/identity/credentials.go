package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/factory/internal/domain/identity"
	"github.com/erp/factory/internal/domain/shared"
)

// DatabaseCredentialProvider checks credentials against stored bcrypt hashes
type DatabaseCredentialProvider struct {
	users identity.UserRepository
}

// NewDatabaseCredentialProvider creates a provider backed by the user table
func NewDatabaseCredentialProvider(users identity.UserRepository) *DatabaseCredentialProvider {
	return &DatabaseCredentialProvider{users: users}
}

var _ identity.CredentialProvider = (*DatabaseCredentialProvider)(nil)

// Validate returns the user when the password matches and the account is active.
// Unknown users and wrong passwords yield the same error.
func (p *DatabaseCredentialProvider) Validate(ctx context.Context, username, password string) (*identity.User, error) {
	user, err := p.users.FindByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, identity.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.VerifyPassword(password) {
		return nil, identity.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, identity.ErrAccountInactive
	}
	return user, nil
}
