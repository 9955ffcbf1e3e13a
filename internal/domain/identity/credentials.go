package identity

import (
	"context"

	"github.com/erp/factory/internal/domain/shared"
)

// Login failures. Both map to an unauthorized response.
var (
	ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	ErrAccountInactive    = shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
)

// CredentialProvider validates a username and password pair.
// It returns the user on success, ErrInvalidCredentials when the pair does
// not match and ErrAccountInactive for disabled accounts.
type CredentialProvider interface {
	Validate(ctx context.Context, username, password string) (*User, error)
}
