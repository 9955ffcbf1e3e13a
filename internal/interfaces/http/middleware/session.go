package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/erp/factory/internal/domain/identity"
	"github.com/erp/factory/internal/domain/shared"
	"github.com/erp/factory/internal/infrastructure/auth"
	"github.com/erp/factory/internal/infrastructure/logger"
	"github.com/erp/factory/internal/interfaces/http/dto"
)

// DefaultSessionCookie is the cookie name used when none is configured
const DefaultSessionCookie = "erp_session"

const bearerPrefix = "Bearer "

// TokenDecoder extracts the session id from a signed cookie value
type TokenDecoder interface {
	SessionID(token string) (string, error)
}

// Authenticator resolves a session id to a live session
type Authenticator interface {
	Authenticate(ctx context.Context, sessionID string) (*identity.Session, error)
}

// SessionConfig configures SessionAuth
type SessionConfig struct {
	CookieName string
	Tokens     TokenDecoder
	Sessions   Authenticator
	Logger     *zap.Logger
}

// SessionAuth requires a valid session cookie (or bearer token carrying the
// same value). The session user is stored in the request context and read
// back with auth.UserFromContext.
func SessionAuth(cfg SessionConfig) gin.HandlerFunc {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultSessionCookie
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		token := SessionToken(c, cfg.CookieName)
		if token == "" {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}

		sessionID, err := cfg.Tokens.SessionID(token)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				abortUnauthorized(c, dto.ErrCodeSessionExpired, "Session has expired")
				return
			}
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Invalid session")
			return
		}

		ctx := c.Request.Context()
		session, err := cfg.Sessions.Authenticate(ctx, sessionID)
		if err != nil {
			if errors.Is(err, shared.ErrUnauthorized) {
				abortUnauthorized(c, dto.ErrCodeUnauthorized, "Invalid session")
				return
			}
			logger.For(ctx, cfg.Logger).Error("Session lookup failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeServiceUnavailable, "Session store unavailable", GetRequestID(c)))
			return
		}

		user := session.User()
		ctx = auth.WithUser(ctx, user)
		ctx = logger.WithUser(ctx, user.Username)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// SessionToken returns the session cookie value, falling back to a bearer
// Authorization header.
func SessionToken(c *gin.Context, cookieName string) string {
	if v, err := c.Cookie(cookieName); err == nil && v != "" {
		return v
	}
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, bearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(h, bearerPrefix))
	}
	return ""
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}
