package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	identityapp "github.com/erp/factory/internal/application/identity"
	"github.com/erp/factory/internal/domain/identity"
	"github.com/erp/factory/internal/infrastructure/config"
	"github.com/erp/factory/internal/interfaces/http/middleware"
)

// SessionSigner turns a session into the cookie value
type SessionSigner interface {
	Sign(session *identity.Session) (string, error)
}

// AuthHandler handles simple login, logout and the current user
type AuthHandler struct {
	BaseHandler
	authService *identityapp.AuthService
	tokens      SessionSigner
	cookie      config.SessionConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *identityapp.AuthService, tokens SessionSigner, cookie config.SessionConfig) *AuthHandler {
	if cookie.CookieName == "" {
		cookie.CookieName = middleware.DefaultSessionCookie
	}
	if cookie.Path == "" {
		cookie.Path = "/"
	}
	return &AuthHandler{authService: authService, tokens: tokens, cookie: cookie}
}

// LoginResponse is the body of a successful login
type LoginResponse struct {
	User      identity.SessionUser `json:"user"`
	ExpiresAt time.Time            `json:"expiresAt"`
}

// Login checks username and password and sets the session cookie
func (h *AuthHandler) Login(c *gin.Context) {
	var req identityapp.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}
	res, err := h.authService.Login(c.Request.Context(), identityapp.LoginInput{
		Username: req.Username,
		Password: req.Password,
		IP:       c.ClientIP(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	token, err := h.tokens.Sign(res.Session)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.setCookie(c, token, int(time.Until(res.Session.ExpiresAt).Seconds()))
	h.Success(c, LoginResponse{User: res.User, ExpiresAt: res.Session.ExpiresAt})
}

// Logout deletes the session and clears the cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	u, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	if err := h.authService.Logout(c.Request.Context(), u.SessionID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.setCookie(c, "", -1)
	h.NoContent(c)
}

// Me returns the session user
func (h *AuthHandler) Me(c *gin.Context) {
	u, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	me, err := h.authService.Me(c.Request.Context(), u.SessionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, me)
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     h.cookie.CookieName,
		Value:    value,
		Path:     h.cookie.Path,
		Domain:   h.cookie.Domain,
		MaxAge:   maxAge,
		Secure:   h.cookie.Secure,
		HttpOnly: true,
		SameSite: sameSite(h.cookie.SameSite),
	})
}

func sameSite(mode string) http.SameSite {
	switch strings.ToLower(mode) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
