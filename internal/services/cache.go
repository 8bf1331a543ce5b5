package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/psychmag/psychmag/internal/core"
	"github.com/psychmag/psychmag/internal/logger"
)

// Cache keys for public content
const (
	keyMagazines    = "magazines:published"
	keyBlogPosts    = "blog:published"
	keyBlogSlug     = "blog:slug:"
	keyGallery      = "gallery:active"
	keyAboutContent = "about"
)

// ContentCache holds rendered public content. A nil *ContentCache or one
// without a backend reads straight from the store.
type ContentCache struct {
	backend core.Cache[json.RawMessage]
	ttl     time.Duration
}

func NewContentCache(backend core.Cache[json.RawMessage], ttl time.Duration) *ContentCache {
	return &ContentCache{backend: backend, ttl: ttl}
}

// Invalidate drops keys after a write. Failures are logged; entries expire
// on their own after the TTL.
func (c *ContentCache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || c.backend == nil {
		return
	}
	for _, key := range keys {
		if err := c.backend.Delete(ctx, key); err != nil {
			logger.Warningf("failed to invalidate cache key %s: %v", key, err)
		}
	}
}

// cached reads key from c, calling fetch on a miss.
func cached[T any](
	ctx context.Context,
	c *ContentCache,
	key string,
	fetch func(ctx context.Context) (T, error),
) (T, error) {
	if c == nil || c.backend == nil {
		return fetch(ctx)
	}

	var value T
	raw, err := c.backend.GetWithFetch(ctx, key, c.ttl,
		func(ctx context.Context, _ string) (json.RawMessage, error) {
			v, err := fetch(ctx)
			if err != nil {
				return nil, err
			}
			return json.Marshal(v)
		})
	if err != nil {
		return value, err
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return value, fmt.Errorf("failed to decode cached %s: %w", key, err)
	}
	return value, nil
}
