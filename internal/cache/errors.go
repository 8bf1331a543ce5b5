package cache

import "errors"

var (
	// ErrCacheMiss is returned by Get for absent or expired keys.
	ErrCacheMiss = errors.New("cache: miss")

	// ErrCacheUnavailable wraps failures talking to the cache backend.
	ErrCacheUnavailable = errors.New("cache: backend unavailable")

	// ErrInvalidValue marks a stored value that no longer decodes into the
	// requested type, typically after a schema change.
	ErrInvalidValue = errors.New("cache: undecodable value")
)
