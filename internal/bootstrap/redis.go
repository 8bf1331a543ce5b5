package bootstrap

import (
	"github.com/psychmag/psychmag/internal/config"
	"github.com/psychmag/psychmag/internal/logger"
	"github.com/psychmag/psychmag/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// initializeRateLimitRedisClient initializes the go-redis client for rate limiting.
// Returns nil if rate limiting is disabled or using memory store.
// Rate limiting uses go-redis because ulule/limiter depends on go-redis types.
func initializeRateLimitRedisClient(cfg *config.Config) (*redis.Client, error) {
	if !cfg.EnableRateLimit || cfg.RateLimitStore != config.RateLimitStoreRedis {
		return nil, nil //nolint:nilnil // redis client not needed in this configuration
	}

	client, err := middleware.CreateRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, err
	}

	logger.Infof(
		"Rate limiting Redis client initialized (address: %s, db: %d)",
		cfg.RedisAddr,
		cfg.RedisDB,
	)
	return client, nil
}
