package cache

import (
	"context"
	"sync"
	"time"

	"github.com/psychmag/psychmag/internal/core"
)

var _ core.Cache[struct{}] = (*MemoryCache[struct{}])(nil)

type entry[T any] struct {
	value     T
	expiresAt time.Time // zero means never
}

func (e entry[T]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// fetchCall is a GetWithFetch load in progress; later callers for the same
// key wait on done instead of hitting the database again.
type fetchCall[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// MemoryCache holds values for a single instance of the site. Expired
// entries are dropped lazily on read and by Purge.
type MemoryCache[T any] struct {
	mu       sync.RWMutex
	entries  map[string]entry[T]
	inflight map[string]*fetchCall[T]
}

func NewMemoryCache[T any]() *MemoryCache[T] {
	return &MemoryCache[T]{
		entries:  make(map[string]entry[T]),
		inflight: make(map[string]*fetchCall[T]),
	}
}

func (m *MemoryCache[T]) Get(_ context.Context, key string) (T, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || e.expired(time.Now()) {
		var zero T
		return zero, ErrCacheMiss
	}
	return e.value, nil
}

// Set stores value under key. A non-positive ttl stores it without expiry.
func (m *MemoryCache[T]) Set(_ context.Context, key string, value T, ttl time.Duration) error {
	e := entry[T]{value: value}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}

	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache[T]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Purge drops expired entries and returns how many were removed.
func (m *MemoryCache[T]) Purge() int {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for key, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, key)
			n++
		}
	}
	return n
}

func (m *MemoryCache[T]) Close() error {
	m.mu.Lock()
	clear(m.entries)
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache[T]) Health(context.Context) error {
	return nil
}

// GetWithFetch reads key and falls back to fetchFunc on a miss. Concurrent
// misses on one key share a single fetchFunc call. Failed fetches are not
// cached.
func (m *MemoryCache[T]) GetWithFetch(
	ctx context.Context,
	key string,
	ttl time.Duration,
	fetchFunc func(ctx context.Context, key string) (T, error),
) (T, error) {
	if value, err := m.Get(ctx, key); err == nil {
		return value, nil
	}

	m.mu.Lock()
	if call, ok := m.inflight[key]; ok {
		m.mu.Unlock()
		select {
		case <-call.done:
			return call.value, call.err
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
	call := &fetchCall[T]{done: make(chan struct{})}
	m.inflight[key] = call
	m.mu.Unlock()

	call.value, call.err = fetchFunc(ctx, key)
	if call.err == nil {
		_ = m.Set(ctx, key, call.value, ttl)
	}

	m.mu.Lock()
	delete(m.inflight, key)
	m.mu.Unlock()
	close(call.done)

	return call.value, call.err
}
