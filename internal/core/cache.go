package core

import (
	"context"
	"time"
)

// Cache[T] backs the public content reads and the admin gauges. Values are
// shared between requests, so callers must not mutate what Get returns.
type Cache[T any] interface {
	// Get returns cache.ErrCacheMiss for absent or expired keys.
	Get(ctx context.Context, key string) (T, error)
	// Set stores value for ttl; a non-positive ttl never expires.
	Set(ctx context.Context, key string, value T, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
	Health(ctx context.Context) error

	// GetWithFetch reads key and, on a miss, stores and returns what
	// fetchFunc produces. Fetch errors are returned and never cached.
	GetWithFetch(
		ctx context.Context,
		key string,
		ttl time.Duration,
		fetchFunc func(ctx context.Context, key string) (T, error),
	) (T, error)
}
