package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session is a server-side login session
type Session struct {
	ID          string    `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// NewSession opens a session for user that expires after ttl
func NewSession(user *User, ttl time.Duration, now time.Time) *Session {
	return &Session{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.GetDisplayNameOrUsername(),
		Role:        user.Role,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
}

// IsExpired reports whether the session has expired at now
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionUser is the authenticated principal passed to handlers
type SessionUser struct {
	SessionID   string    `json:"-"`
	UserID      uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Role        Role      `json:"role"`
}

// User returns the principal of the session
func (s *Session) User() SessionUser {
	return SessionUser{
		SessionID:   s.ID,
		UserID:      s.UserID,
		Username:    s.Username,
		DisplayName: s.DisplayName,
		Role:        s.Role,
	}
}

// SessionStore keeps sessions server-side.
// Find returns shared.ErrNotFound for unknown or expired sessions.
type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	Find(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}
