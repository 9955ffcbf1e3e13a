package identity

import (
	"time"

	"github.com/erp/factory/internal/domain/identity"
)

// LoginRequest is the simple-login payload
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=100"`
	Password string `json:"password" binding:"required,min=1,max=72"`
}

// LoginInput carries the credentials and the caller address
type LoginInput struct {
	Username string
	Password string
	IP       string
}

// LoginResult is an established session
type LoginResult struct {
	Session *identity.Session
	User    identity.SessionUser
}

// MeResponse is the body of GET /api/auth/me
type MeResponse struct {
	User      identity.SessionUser `json:"user"`
	ExpiresAt time.Time            `json:"expiresAt"`
}

// DemoUser is a seeded account
type DemoUser struct {
	Username    string
	Password    string
	DisplayName string
	Role        string
}
