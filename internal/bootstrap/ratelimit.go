package bootstrap

import (
	"fmt"

	"github.com/psychmag/psychmag/internal/config"
	"github.com/psychmag/psychmag/internal/logger"
	"github.com/psychmag/psychmag/internal/middleware"
	"github.com/psychmag/psychmag/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// rateLimitMiddlewares holds rate limiting middlewares for the public write endpoints
type rateLimitMiddlewares struct {
	signIn  gin.HandlerFunc
	contact gin.HandlerFunc
}

// setupRateLimiting configures rate limiting middlewares based on configuration.
// redisClient is nil for the memory store.
func setupRateLimiting(
	cfg *config.Config,
	auditor services.Auditor,
	redisClient *redis.Client,
) (rateLimitMiddlewares, error) {
	noOpMiddleware := func(c *gin.Context) { c.Next() }

	if !cfg.EnableRateLimit {
		logger.Infof("Rate limiting disabled")
		return rateLimitMiddlewares{signIn: noOpMiddleware, contact: noOpMiddleware}, nil
	}
	return createRateLimiters(cfg, auditor, redisClient)
}

// createRateLimiters creates one limiter per endpoint
func createRateLimiters(
	cfg *config.Config,
	auditor services.Auditor,
	redisClient *redis.Client,
) (rateLimitMiddlewares, error) {
	storeType := middleware.RateLimitStoreType(cfg.RateLimitStore)
	if storeType == middleware.RateLimitStoreRedis {
		logger.Infof("Rate limiting enabled (store: redis, shared across instances)")
	} else {
		logger.Infof("Rate limiting enabled (store: memory, single instance only)")
	}

	createLimiter := func(name string, requestsPerMinute int) (gin.HandlerFunc, error) {
		limiter, err := middleware.NewRateLimiter(middleware.RateLimitConfig{
			Name:              name,
			RequestsPerMinute: requestsPerMinute,
			StoreType:         storeType,
			RedisClient:       redisClient,
			CleanupInterval:   cfg.RateLimitCleanupInterval,
			Auditor:           auditor,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limiter for %s: %w", name, err)
		}
		return limiter, nil
	}

	signIn, err := createLimiter("sign_in", cfg.SignInRateLimit)
	if err != nil {
		return rateLimitMiddlewares{}, err
	}
	contact, err := createLimiter("contact", cfg.ContactRateLimit)
	if err != nil {
		return rateLimitMiddlewares{}, err
	}
	return rateLimitMiddlewares{signIn: signIn, contact: contact}, nil
}
