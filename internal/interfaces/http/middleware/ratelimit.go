package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"

	"github.com/erp/factory/internal/infrastructure/logger"
	"github.com/erp/factory/internal/interfaces/http/dto"
)

// DefaultLoginRate allows ten login attempts per minute and client
const DefaultLoginRate = "10-M"

// RateLimitConfig configures a limiter keyed by client IP
type RateLimitConfig struct {
	// Rate uses the limiter format, e.g. "5-M"
	Rate string
	// Prefix separates the counters of different limiters in a shared store
	Prefix string
	// Redis selects the shared store; nil keeps counters in memory
	Redis  redis.UniversalClient
	Logger *zap.Logger
}

// RateLimit builds the per-IP limiter middleware
func RateLimit(cfg RateLimitConfig) (gin.HandlerFunc, error) {
	if cfg.Rate == "" {
		cfg.Rate = DefaultLoginRate
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "ratelimit"
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	rate, err := limiter.NewRateFromFormatted(cfg.Rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate %q: %w", cfg.Rate, err)
	}

	var store limiter.Store
	if cfg.Redis != nil {
		store, err = sredis.NewStoreWithOptions(cfg.Redis, limiter.StoreOptions{
			Prefix:   cfg.Prefix,
			MaxRetry: 3,
		})
		if err != nil {
			return nil, fmt.Errorf("create redis limiter store: %w", err)
		}
	} else {
		store = memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          cfg.Prefix,
			CleanUpInterval: time.Minute,
		})
	}

	instance := limiter.New(store, rate)
	return mgin.NewMiddleware(instance,
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRateLimited,
				"Too many requests. Please try again later.",
				GetRequestID(c),
			))
		}),
		// a broken store must not lock everybody out
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			logger.For(c.Request.Context(), cfg.Logger).Error("Rate limiter unavailable", zap.Error(err))
			c.Next()
		}),
	), nil
}
