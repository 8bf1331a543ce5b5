package adminsession

import (
	"context"
	"sync"
	"time"

	"github.com/psychmag/psychmag/internal/core"
	"github.com/psychmag/psychmag/internal/logger"
)

// Manager owns the tab states and keeps them in sync with the identity
// provider's session events.
type Manager struct {
	resolver *Resolver
	metrics  core.Recorder

	mu   sync.RWMutex
	tabs map[string]*State

	lifecycle   sync.Mutex
	unsubscribe func()
	done        chan struct{}
}

func NewManager(resolver *Resolver, metrics core.Recorder) *Manager {
	return &Manager{
		resolver: resolver,
		metrics:  metrics,
		tabs:     make(map[string]*State),
	}
}

// Tab returns the state for tabID, creating it in PhaseLoading.
func (m *Manager) Tab(tabID string) *State {
	m.mu.RLock()
	st, ok := m.tabs[tabID]
	m.mu.RUnlock()
	if ok {
		return st
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.tabs[tabID]; ok {
		return st
	}
	st = NewState(tabID, m.resolver, m.metrics)
	m.tabs[tabID] = st
	m.reportLocked()
	return st
}

func (m *Manager) Lookup(tabID string) (*State, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.tabs[tabID]
	return st, ok
}

func (m *Manager) Remove(tabID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tabs, tabID)
	m.reportLocked()
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tabs)
}

// PruneIdle drops tabs not seen for longer than maxIdle. Tabs with an open
// Watch stream are kept.
func (m *Manager) PruneIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, st := range m.tabs {
		if st.idleSince().Before(cutoff) {
			delete(m.tabs, id)
			removed++
		}
	}
	if removed > 0 {
		m.reportLocked()
	}
	return removed
}

func (m *Manager) boundTo(accessToken string) []*State {
	if accessToken == "" {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*State
	for _, st := range m.tabs {
		if st.Token() == accessToken {
			out = append(out, st)
		}
	}
	return out
}

// Start subscribes to the provider's session events. Calling Start on a
// running manager does nothing.
func (m *Manager) Start(ctx context.Context) {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()
	if m.unsubscribe != nil {
		return
	}

	events, cancel := m.resolver.Provider().Subscribe()
	m.unsubscribe = cancel
	m.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				m.handle(ctx, ev)
			}
		}
	}(m.done)
}

// Close unsubscribes from the provider and waits for the event loop to exit.
func (m *Manager) Close() {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()
	if m.unsubscribe == nil {
		return
	}
	m.unsubscribe()
	<-m.done
	m.unsubscribe = nil
}

func (m *Manager) handle(ctx context.Context, ev core.SessionEvent) {
	for _, st := range m.boundTo(ev.AccessToken) {
		switch ev.Kind {
		case core.SessionSignedOut:
			if st.EndSession(ev.AccessToken) {
				logger.Debugf("tab %s: session ended by provider", st.ID())
			}
		case core.SessionSignedIn, core.SessionUserUpdated:
			st.Resolve(ctx, ev.AccessToken)
		}
	}
}

func (m *Manager) reportLocked() {
	if m.metrics != nil {
		m.metrics.SetActiveTabsCount(len(m.tabs))
	}
}
