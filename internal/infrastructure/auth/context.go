package auth

import (
	"context"

	"github.com/erp/factory/internal/domain/identity"
)

type userKey struct{}

// WithUser stores the authenticated session user in ctx
func WithUser(ctx context.Context, user identity.SessionUser) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext returns the session user stored by WithUser
func UserFromContext(ctx context.Context) (identity.SessionUser, bool) {
	u, ok := ctx.Value(userKey{}).(identity.SessionUser)
	return u, ok
}
