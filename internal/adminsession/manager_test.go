package adminsession

import (
	"context"
	"testing"
	"time"

	"github.com/psychmag/psychmag/internal/core"
	"github.com/psychmag/psychmag/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_TabRegistry(t *testing.T) {
	f := newFixture(nil)
	m := metrics.NewMetrics(prometheus.NewRegistry())
	mgr := NewManager(f.resolver, m)

	a := mgr.Tab("a")
	assert.Same(t, a, mgr.Tab("a"))
	mgr.Tab("b")
	assert.Equal(t, 2, mgr.Len())
	assert.InDelta(t, 2, testutil.ToFloat64(m.ActiveTabs), 0)

	_, ok := mgr.Lookup("missing")
	assert.False(t, ok)

	mgr.Remove("a")
	assert.Equal(t, 1, mgr.Len())
	assert.InDelta(t, 1, testutil.ToFloat64(m.ActiveTabs), 0)
}

func TestManager_PruneIdle(t *testing.T) {
	mgr := NewManager(newFixture(nil).resolver, nil)
	stale := mgr.Tab("stale")
	stale.mu.Lock()
	stale.lastSeen = time.Now().Add(-2 * time.Hour)
	stale.mu.Unlock()
	mgr.Tab("fresh")

	assert.Equal(t, 1, mgr.PruneIdle(time.Hour))
	_, ok := mgr.Lookup("fresh")
	assert.True(t, ok)
	_, ok = mgr.Lookup("stale")
	assert.False(t, ok)
}

func TestManager_PruneIdleKeepsWatchedTabs(t *testing.T) {
	mgr := NewManager(newFixture(nil).resolver, nil)
	watched := mgr.Tab("watched")
	_, stop := watched.Watch()
	watched.mu.Lock()
	watched.lastSeen = time.Now().Add(-2 * time.Hour)
	watched.mu.Unlock()

	assert.Equal(t, 0, mgr.PruneIdle(time.Hour))
	_, ok := mgr.Lookup("watched")
	assert.True(t, ok)

	stop()
	assert.Equal(t, 1, mgr.PruneIdle(time.Hour))
}

func TestManager_SubscribesUntilClosed(t *testing.T) {
	f := newFixture(nil)
	mgr := NewManager(f.resolver, nil)

	mgr.Start(context.Background())
	mgr.Start(context.Background())
	assert.Equal(t, 1, f.provider.notifier.count())

	mgr.Close()
	mgr.Close()
	assert.Equal(t, 0, f.provider.notifier.count())
}

func TestManager_SignOutEventEndsBoundTabs(t *testing.T) {
	f := newFixture(map[string]bool{"admin@x.com": false})
	f.provider.signIn("tok", "admin@x.com")
	mgr := NewManager(f.resolver, nil)
	mgr.Start(context.Background())
	defer mgr.Close()

	bound := mgr.Tab("bound")
	other := mgr.Tab("other")
	bound.Resolve(context.Background(), "tok")
	bound.SetEditMode(true)
	other.Resolve(context.Background(), "")

	watch, stop := bound.Watch()
	defer stop()

	// Session ended outside this tab, e.g. from another device
	f.provider.notifier.publish(core.SessionEvent{Kind: core.SessionSignedOut, AccessToken: "tok"})

	select {
	case snap := <-watch:
		assert.Equal(t, PhaseAnonymous, snap.Phase)
		assert.False(t, snap.EditMode)
	case <-time.After(2 * time.Second):
		t.Fatal("tab was not signed out")
	}
	assert.Equal(t, PhaseAnonymous, other.Snapshot().Phase)
}

func TestManager_UserUpdatedReResolves(t *testing.T) {
	f := newFixture(map[string]bool{"admin@x.com": false})
	f.provider.signIn("tok", "admin@x.com")
	mgr := NewManager(f.resolver, nil)
	mgr.Start(context.Background())
	defer mgr.Close()

	tab := mgr.Tab("t")
	require.Equal(t, PhaseAdmin, tab.Resolve(context.Background(), "tok").Phase)

	// Promotion to super admin is picked up on the next auth event
	f.allowlist.mu.Lock()
	f.allowlist.admins["admin@x.com"] = true
	f.allowlist.mu.Unlock()

	watch, stop := tab.Watch()
	defer stop()
	f.provider.notifier.publish(core.SessionEvent{Kind: core.SessionUserUpdated, AccessToken: "tok"})

	select {
	case snap := <-watch:
		assert.Equal(t, PhaseSuperAdmin, snap.Phase)
	case <-time.After(2 * time.Second):
		t.Fatal("tab was not re-resolved")
	}
}

func TestManager_RemovedFromAllowlistIsSignedOutOnNextEvent(t *testing.T) {
	f := newFixture(map[string]bool{"admin@x.com": false})
	f.provider.signIn("tok", "admin@x.com")
	mgr := NewManager(f.resolver, nil)
	mgr.Start(context.Background())
	defer mgr.Close()

	tab := mgr.Tab("t")
	tab.Resolve(context.Background(), "tok")

	f.allowlist.mu.Lock()
	delete(f.allowlist.admins, "admin@x.com")
	f.allowlist.mu.Unlock()

	watch, stop := tab.Watch()
	defer stop()
	f.provider.notifier.publish(core.SessionEvent{Kind: core.SessionUserUpdated, AccessToken: "tok"})

	select {
	case snap := <-watch:
		assert.Equal(t, PhaseUnauthorized, snap.Phase)
		assert.Equal(t, NoticeNotAuthorized, snap.Notice)
	case <-time.After(2 * time.Second):
		t.Fatal("tab was not re-resolved")
	}
	assert.Eventually(t, func() bool {
		return len(f.provider.signOuts()) == 1
	}, 2*time.Second, 10*time.Millisecond)
}
