package metrics

import (
	"context"
	"time"

	"github.com/psychmag/psychmag/internal/core"
)

// adminCounter is the store query needed by CacheWrapper.
type adminCounter interface {
	CountAdmins(ctx context.Context) (total, superAdmins int64, err error)
}

// CacheWrapper provides a read-through cache for gauge data so that several
// instances updating gauges do not each hit the database.
type CacheWrapper struct {
	store adminCounter
	cache core.Cache[int64]
}

func NewCacheWrapper(store adminCounter, cache core.Cache[int64]) *CacheWrapper {
	return &CacheWrapper{
		store: store,
		cache: cache,
	}
}

// GetAdminCounts returns the allowlist size and the super admin count.
func (m *CacheWrapper) GetAdminCounts(
	ctx context.Context,
	ttl time.Duration,
) (total, superAdmins int64, err error) {
	// Both values come from one query; the super count is cached alongside.
	total, err = m.cache.GetWithFetch(ctx, "admins:total", ttl,
		func(ctx context.Context, key string) (int64, error) {
			t, s, err := m.store.CountAdmins(ctx)
			if err != nil {
				return 0, err
			}
			_ = m.cache.Set(ctx, "admins:super", s, ttl)
			return t, nil
		},
	)
	if err != nil {
		return 0, 0, err
	}

	superAdmins, err = m.cache.GetWithFetch(ctx, "admins:super", ttl,
		func(ctx context.Context, key string) (int64, error) {
			_, s, err := m.store.CountAdmins(ctx)
			return s, err
		},
	)
	if err != nil {
		return 0, 0, err
	}
	return total, superAdmins, nil
}

// UpdateGauges refreshes the allowlist gauges on recorder.
func (m *CacheWrapper) UpdateGauges(ctx context.Context, recorder core.Recorder, ttl time.Duration) {
	total, supers, err := m.GetAdminCounts(ctx, ttl)
	if err != nil {
		recorder.RecordDatabaseQueryError("count_admins")
		return
	}
	recorder.SetAdminsCount(int(total), int(supers))
}
