package identity

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/erp/factory/internal/domain/identity"
	"github.com/erp/factory/internal/domain/shared"
)

// DefaultSessionTTL is used when no session lifetime is configured
const DefaultSessionTTL = 12 * time.Hour

// LoginRecorder counts login outcomes
type LoginRecorder interface {
	RecordLogin(ctx context.Context, success bool, reason string)
}

type nopLoginRecorder struct{}

func (nopLoginRecorder) RecordLogin(context.Context, bool, string) {}

// AuthService handles simple login, logout and session lookup
type AuthService struct {
	credentials identity.CredentialProvider
	users       identity.UserRepository
	sessions    identity.SessionStore
	ttl         time.Duration
	recorder    LoginRecorder
	logger      *zap.Logger
	now         func() time.Time
}

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	SessionTTL time.Duration
	Recorder   LoginRecorder
}

// NewAuthService creates a new authentication service
func NewAuthService(
	credentials identity.CredentialProvider,
	users identity.UserRepository,
	sessions identity.SessionStore,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	if config.SessionTTL <= 0 {
		config.SessionTTL = DefaultSessionTTL
	}
	if config.Recorder == nil {
		config.Recorder = nopLoginRecorder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		credentials: credentials,
		users:       users,
		sessions:    sessions,
		ttl:         config.SessionTTL,
		recorder:    config.Recorder,
		logger:      logger,
		now:         shared.Now,
	}
}

// SessionTTL returns the configured session lifetime
func (s *AuthService) SessionTTL() time.Duration {
	return s.ttl
}

// Login validates the credentials and opens a session
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.credentials.Validate(ctx, input.Username, input.Password)
	if err != nil {
		var de *shared.DomainError
		if errors.As(err, &de) {
			s.recorder.RecordLogin(ctx, false, de.Code)
			s.logger.Warn("Login rejected",
				zap.String("username", input.Username),
				zap.String("ip", input.IP),
				zap.String("reason", de.Code))
		}
		return nil, err
	}

	user.RecordLogin()
	if err := s.users.Save(ctx, user); err != nil {
		s.logger.Error("Failed to record last login", zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	session := identity.NewSession(user, s.ttl, s.now())
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	s.recorder.RecordLogin(ctx, true, "")
	s.logger.Info("User logged in",
		zap.String("username", user.Username),
		zap.String("user_id", user.ID.String()),
		zap.String("ip", input.IP))

	return &LoginResult{Session: session, User: session.User()}, nil
}

// Logout deletes the session. Unknown sessions are ignored.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	return nil
}

// Authenticate resolves a live session
func (s *AuthService) Authenticate(ctx context.Context, sessionID string) (*identity.Session, error) {
	if sessionID == "" {
		return nil, shared.ErrUnauthorized
	}
	session, err := s.sessions.Find(ctx, sessionID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthorized
		}
		return nil, err
	}
	if session.IsExpired(s.now()) {
		return nil, shared.ErrUnauthorized
	}
	return session, nil
}

// Me returns the user of a session
func (s *AuthService) Me(ctx context.Context, sessionID string) (*MeResponse, error) {
	session, err := s.Authenticate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &MeResponse{User: session.User(), ExpiresAt: session.ExpiresAt}, nil
}

// SeedUsers creates the configured demo accounts that do not exist yet
func (s *AuthService) SeedUsers(ctx context.Context, demo []DemoUser) error {
	for _, d := range demo {
		exists, err := s.users.ExistsByUsername(ctx, d.Username)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		role := identity.Role(d.Role)
		if role == "" {
			role = identity.RoleOperator
		}
		user, err := identity.NewUser(d.Username, d.Password, role)
		if err != nil {
			return err
		}
		user.SetDisplayName(d.DisplayName)
		if err := s.users.Save(ctx, user); err != nil {
			return err
		}
		s.logger.Info("Seeded user", zap.String("username", user.Username), zap.String("role", string(role)))
	}
	return nil
}
