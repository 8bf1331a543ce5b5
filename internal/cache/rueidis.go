package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/psychmag/psychmag/internal/core"

	"github.com/redis/rueidis"
)

var _ core.Cache[struct{}] = (*RueidisCache[struct{}])(nil)

// RueidisCache stores JSON encoded values in Redis so every instance of the
// site serves the same public content. Keys are namespaced by keyPrefix.
type RueidisCache[T any] struct {
	client    rueidis.Client
	keyPrefix string
}

// NewRueidisCache connects to Redis and verifies the connection within ctx.
func NewRueidisCache[T any](
	ctx context.Context,
	addr, password string,
	db int,
	keyPrefix string,
) (*RueidisCache[T], error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{addr},
		Password:     password,
		SelectDB:     db,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}

	c := &RueidisCache[T]{client: client, keyPrefix: keyPrefix}
	if err := c.Health(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis at %s: %w", addr, err)
	}
	return c, nil
}

func (r *RueidisCache[T]) key(k string) string {
	return r.keyPrefix + k
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
}

func (r *RueidisCache[T]) Get(ctx context.Context, key string) (T, error) {
	var value T

	raw, err := r.client.Do(ctx, r.client.B().Get().Key(r.key(key)).Build()).AsBytes()
	switch {
	case rueidis.IsRedisNil(err):
		return value, ErrCacheMiss
	case err != nil:
		return value, unavailable(err)
	}

	if err := json.Unmarshal(raw, &value); err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %s: %v", ErrInvalidValue, key, err)
	}
	return value, nil
}

// Set stores value under key. A non-positive ttl stores it without expiry.
func (r *RueidisCache[T]) Set(ctx context.Context, key string, value T, ttl time.Duration) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidValue, key, err)
	}

	set := r.client.B().Set().Key(r.key(key)).Value(rueidis.BinaryString(encoded))
	var cmd rueidis.Completed
	if ttl > 0 {
		cmd = set.Ex(ttl).Build()
	} else {
		cmd = set.Build()
	}
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return unavailable(err)
	}
	return nil
}

// Delete unlinks key; reclaiming the value happens in the background on
// the Redis side.
func (r *RueidisCache[T]) Delete(ctx context.Context, key string) error {
	if err := r.client.Do(ctx, r.client.B().Unlink().Key(r.key(key)).Build()).Error(); err != nil {
		return unavailable(err)
	}
	return nil
}

func (r *RueidisCache[T]) Close() error {
	r.client.Close()
	return nil
}

func (r *RueidisCache[T]) Health(ctx context.Context) error {
	if err := r.client.Do(ctx, r.client.B().Ping().Build()).Error(); err != nil {
		return unavailable(err)
	}
	return nil
}

// GetWithFetch reads key and falls back to fetchFunc on a miss. A Redis
// outage degrades to calling fetchFunc directly; an undecodable entry is
// dropped and replaced.
func (r *RueidisCache[T]) GetWithFetch(
	ctx context.Context,
	key string,
	ttl time.Duration,
	fetchFunc func(ctx context.Context, key string) (T, error),
) (T, error) {
	value, err := r.Get(ctx, key)
	if err == nil {
		return value, nil
	}
	if errors.Is(err, ErrInvalidValue) {
		_ = r.Delete(ctx, key)
	}

	value, err = fetchFunc(ctx, key)
	if err != nil {
		var zero T
		return zero, err
	}
	_ = r.Set(ctx, key, value, ttl)
	return value, nil
}
