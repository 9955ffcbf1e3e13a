package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	BcryptCost = bcrypt.MinCost
}

func TestNewUser(t *testing.T) {
	u, err := NewUser("Admin", "admin12345", RoleAdmin)
	require.NoError(t, err)

	assert.Equal(t, "admin", u.Username)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "admin12345", u.PasswordHash)
	assert.True(t, u.VerifyPassword("admin12345"))
	assert.False(t, u.VerifyPassword("wrong"))

	_, err = NewUser("ab", "admin12345", RoleAdmin)
	assert.Error(t, err)
	_, err = NewUser("admin", "short", RoleAdmin)
	assert.Error(t, err)
	_, err = NewUser("admin", "admin12345", "root")
	assert.Error(t, err)
}

func TestUser_SetPassword(t *testing.T) {
	u, _ := NewUser("operator", "first-pass-1", RoleOperator)
	require.NoError(t, u.SetPassword("second-pass-2"))
	assert.True(t, u.VerifyPassword("second-pass-2"))
	assert.False(t, u.VerifyPassword("first-pass-1"))
}

func TestSession(t *testing.T) {
	u, _ := NewUser("viewer", "viewer-pass", RoleViewer)
	u.SetDisplayName("Viewer One")
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	s := NewSession(u, time.Hour, now)
	assert.NotEmpty(t, s.ID)
	assert.False(t, s.IsExpired(now.Add(59*time.Minute)))
	assert.True(t, s.IsExpired(now.Add(time.Hour)))

	principal := s.User()
	assert.Equal(t, u.ID, principal.UserID)
	assert.Equal(t, "Viewer One", principal.DisplayName)
	assert.Equal(t, s.ID, principal.SessionID)
}
