package cache

import (
	"context"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/erp/factory/internal/domain/identity"
	"github.com/erp/factory/internal/infrastructure/config"
)

// SessionStoreFactory picks the session backend from configuration
type SessionStoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// FactoryOption configures a SessionStoreFactory
type FactoryOption func(*SessionStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *SessionStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to memory
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *SessionStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewSessionStoreFactory creates a new factory
func NewSessionStoreFactory(cfg config.RedisConfig, opts ...FactoryOption) *SessionStoreFactory {
	f := &SessionStoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Backend is a created session store together with its shared Redis client.
// Client is nil for the in-memory backend.
type Backend struct {
	Store  identity.SessionStore
	Client *redis.Client
	closer io.Closer
}

// Close releases the Redis client or stops the in-memory sweeper
func (b *Backend) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

// Create returns a Redis store when Redis is enabled and reachable,
// otherwise the in-memory store.
func (f *SessionStoreFactory) Create(ctx context.Context) (*Backend, error) {
	if f.redisConfig.Enabled {
		client, err := NewRedisClient(ctx, f.redisConfig)
		if err == nil {
			f.logger.Info("using Redis session store", zap.String("addr", f.redisConfig.Addr()))
			return &Backend{Store: NewRedisSessionStore(client, ""), Client: client, closer: client}, nil
		}
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("redis required for sessions but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory sessions", zap.Error(err))
	}
	store := NewInMemorySessionStore()
	return &Backend{Store: store, closer: store}, nil
}
