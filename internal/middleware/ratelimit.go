package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/psychmag/psychmag/internal/logger"
	"github.com/psychmag/psychmag/internal/models"
	"github.com/psychmag/psychmag/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	limiterRedis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// RateLimitStoreType selects where counters live. Memory counters are per
// process; Redis counters are shared by every instance of the site.
type RateLimitStoreType string

const (
	RateLimitStoreMemory RateLimitStoreType = "memory"
	RateLimitStoreRedis  RateLimitStoreType = "redis"
)

const redisPingTimeout = 5 * time.Second

// RateLimitConfig describes one per-IP limiter, e.g. the sign-in form.
type RateLimitConfig struct {
	// Name keeps the counters of limiters sharing a store apart.
	Name              string
	RequestsPerMinute int
	CleanupInterval   time.Duration // memory store only

	StoreType   RateLimitStoreType
	RedisClient *redis.Client // required for RateLimitStoreRedis

	// Auditor, when set, records every rejected request.
	Auditor services.Auditor
}

func (c RateLimitConfig) prefix() string {
	if c.Name == "" {
		return "ratelimit"
	}
	return "ratelimit:" + c.Name
}

// CreateRedisClient connects to Redis and fails fast when it is unreachable.
func CreateRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return client, nil
}

func newLimiterStore(cfg RateLimitConfig) (limiter.Store, error) {
	opts := limiter.StoreOptions{
		Prefix:          cfg.prefix(),
		CleanUpInterval: cfg.CleanupInterval,
	}
	if opts.CleanUpInterval <= 0 {
		opts.CleanUpInterval = limiter.DefaultCleanUpInterval
	}

	switch cfg.StoreType {
	case RateLimitStoreRedis:
		if cfg.RedisClient == nil {
			return nil, fmt.Errorf("rate limiter %q: redis store requires a client", cfg.Name)
		}
		store, err := limiterRedis.NewStoreWithOptions(cfg.RedisClient, opts)
		if err != nil {
			return nil, fmt.Errorf("rate limiter %q: %w", cfg.Name, err)
		}
		return store, nil
	case RateLimitStoreMemory, "":
		return memory.NewStoreWithOptions(opts), nil
	default:
		return nil, fmt.Errorf("rate limiter %q: unknown store %q", cfg.Name, cfg.StoreType)
	}
}

// NewRateLimiter returns a per-IP limiter. Rejected requests get 429 with
// Retry-After; a failing store answers 503 rather than letting traffic
// through unmetered.
func NewRateLimiter(cfg RateLimitConfig) (gin.HandlerFunc, error) {
	if cfg.RequestsPerMinute <= 0 {
		return nil, fmt.Errorf("invalid rate limit for %q: %d", cfg.Name, cfg.RequestsPerMinute)
	}

	store, err := newLimiterStore(cfg)
	if err != nil {
		return nil, err
	}
	rate := limiter.Rate{Period: time.Minute, Limit: int64(cfg.RequestsPerMinute)}

	return mgin.NewMiddleware(limiter.New(store, rate),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			rejectOverLimit(c, cfg, rate)
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			logger.Errorf("Rate limiter %q unavailable: %v", cfg.Name, err)
			abortWithError(c, http.StatusServiceUnavailable, "server_error", "server_error")
		}),
	), nil
}

func rejectOverLimit(c *gin.Context, cfg RateLimitConfig, rate limiter.Rate) {
	if reset, err := strconv.ParseInt(c.Writer.Header().Get("X-RateLimit-Reset"), 10, 64); err == nil {
		wait := max(time.Until(time.Unix(reset, 0)), time.Second)
		c.Header("Retry-After", strconv.Itoa(int(wait.Round(time.Second).Seconds())))
	}

	if cfg.Auditor != nil {
		cfg.Auditor.Log(c.Request.Context(), services.AuditLogEntry{
			EventType:     models.EventRateLimitExceeded,
			Severity:      models.SeverityWarning,
			ActorIP:       c.ClientIP(),
			Action:        "rate limit exceeded",
			Details:       models.AuditDetails{"limiter": cfg.Name, "limit": rate.Limit},
			RequestPath:   c.Request.URL.Path,
			RequestMethod: c.Request.Method,
		})
	}
	abortWithError(c, http.StatusTooManyRequests, "rate_limit_exceeded", "rate_limited")
}
