package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/factory/internal/domain/identity"
	"github.com/erp/factory/internal/domain/shared"
	"github.com/erp/factory/internal/infrastructure/config"
)

func newSession(ttl time.Duration) *identity.Session {
	now := time.Now()
	return &identity.Session{
		ID:        uuid.NewString(),
		UserID:    uuid.New(),
		Username:  "admin",
		Role:      identity.RoleAdmin,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestInMemorySessionStore(t *testing.T) {
	store := NewInMemorySessionStore()
	defer store.Close()
	ctx := context.Background()

	t.Run("finds saved session", func(t *testing.T) {
		s := newSession(time.Hour)
		require.NoError(t, store.Save(ctx, s))

		got, err := store.Find(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, s.Username, got.Username)
		assert.Equal(t, s.UserID, got.UserID)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, err := store.Find(ctx, "nope")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("expired session is not found", func(t *testing.T) {
		s := newSession(time.Hour)
		require.NoError(t, store.Save(ctx, s))
		store.now = func() time.Time { return s.ExpiresAt }
		defer func() { store.now = time.Now }()

		_, err := store.Find(ctx, s.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		s := newSession(time.Hour)
		require.NoError(t, store.Save(ctx, s))
		require.NoError(t, store.Delete(ctx, s.ID))
		require.NoError(t, store.Delete(ctx, s.ID))

		_, err := store.Find(ctx, s.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestInMemorySessionStore_Cleanup(t *testing.T) {
	store := NewInMemorySessionStore()
	defer store.Close()
	ctx := context.Background()

	live := newSession(time.Hour)
	dead := newSession(time.Minute)
	require.NoError(t, store.Save(ctx, live))
	require.NoError(t, store.Save(ctx, dead))
	store.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	store.cleanup()
	assert.Equal(t, 1, store.Size())
}

func TestInMemorySessionStore_CloseTwice(t *testing.T) {
	store := NewInMemorySessionStore()
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

func TestSessionStoreFactory(t *testing.T) {
	ctx := context.Background()

	t.Run("memory when redis is disabled", func(t *testing.T) {
		b, err := NewSessionStoreFactory(config.RedisConfig{}).Create(ctx)
		require.NoError(t, err)
		defer b.Close()
		assert.IsType(t, &InMemorySessionStore{}, b.Store)
		assert.Nil(t, b.Client)
	})

	t.Run("falls back when redis is unreachable", func(t *testing.T) {
		cfg := config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}
		b, err := NewSessionStoreFactory(cfg).Create(ctx)
		require.NoError(t, err)
		defer b.Close()
		assert.IsType(t, &InMemorySessionStore{}, b.Store)
	})

	t.Run("errors without fallback", func(t *testing.T) {
		cfg := config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}
		_, err := NewSessionStoreFactory(cfg, WithInMemoryFallback(false)).Create(ctx)
		assert.Error(t, err)
	})
}
