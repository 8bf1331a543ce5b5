package bootstrap

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/psychmag/psychmag/internal/cache"
	"github.com/psychmag/psychmag/internal/config"
	"github.com/psychmag/psychmag/internal/core"
	"github.com/psychmag/psychmag/internal/logger"
	"github.com/psychmag/psychmag/internal/metrics"
)

const cacheInitTimeout = 5 * time.Second

// initializeMetrics initializes Prometheus metrics
func initializeMetrics(cfg *config.Config) core.Recorder {
	recorder := metrics.Init(cfg.MetricsEnabled)
	if cfg.MetricsEnabled {
		logger.Infof("Prometheus metrics initialized")
	} else {
		logger.Infof("Metrics disabled (using noop implementation)")
	}
	return recorder
}

// purger is implemented by the in-memory cache, whose expired entries are
// only dropped on read or by an explicit purge.
type purger interface {
	Purge() int
}

// newCache builds a cache of the configured type under keyPrefix.
func newCache[T any](
	ctx context.Context,
	cfg *config.Config,
	keyPrefix, name string,
) (core.Cache[T], error) {
	ctx, cancel := context.WithTimeout(ctx, cacheInitTimeout)
	defer cancel()

	switch cfg.CacheType {
	case config.CacheTypeRedis:
		c, err := cache.NewRueidisCache[T](
			ctx,
			cfg.RedisAddr,
			cfg.RedisPassword,
			cfg.RedisDB,
			keyPrefix,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis %s cache: %w", name, err)
		}
		logger.Infof("%s cache: redis (addr=%s, db=%d)", name, cfg.RedisAddr, cfg.RedisDB)
		return c, nil
	default:
		logger.Infof("%s cache: memory (single instance only)", name)
		return cache.NewMemoryCache[T](), nil
	}
}

// initializeContentCache creates the cache behind public content reads
func initializeContentCache(ctx context.Context, cfg *config.Config) (core.Cache[json.RawMessage], error) {
	return newCache[json.RawMessage](ctx, cfg, "psychmag:content:", "Content")
}

// initializeMetricsCache creates the cache behind gauge queries. It is nil
// when metrics are disabled.
func initializeMetricsCache(ctx context.Context, cfg *config.Config) (core.Cache[int64], error) {
	if !cfg.MetricsEnabled {
		return nil, nil //nolint:nilnil // no cache needed without metrics
	}
	return newCache[int64](ctx, cfg, "psychmag:metrics:", "Metrics")
}
