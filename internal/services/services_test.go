package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/psychmag/psychmag/internal/cache"
	"github.com/psychmag/psychmag/internal/config"
	"github.com/psychmag/psychmag/internal/models"
	"github.com/psychmag/psychmag/internal/store"

	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New("sqlite", ":memory:", &config.Config{
		BootstrapSuperAdmin: "owner@x.com",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestCache() *ContentCache {
	return NewContentCache(cache.NewMemoryCache[json.RawMessage](), time.Minute)
}

var testMedia = MediaURLs{
	Blog:      "https://cdn.example.com/blog_images",
	Photos:    "https://cdn.example.com/photos",
	Magazines: "https://cdn.example.com/magazines/",
}

// captureAuditor records audit entries in memory.
type captureAuditor struct {
	mu      sync.Mutex
	entries []AuditLogEntry
}

func (a *captureAuditor) Log(ctx context.Context, entry AuditLogEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
}

func (a *captureAuditor) last() AuditLogEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.entries) == 0 {
		return AuditLogEntry{}
	}
	return a.entries[len(a.entries)-1]
}

func (a *captureAuditor) count(event models.EventType) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, e := range a.entries {
		if e.EventType == event {
			n++
		}
	}
	return n
}

func storePage(page int) store.PaginationParams {
	return store.NewPaginationParams(page, 10, "")
}
