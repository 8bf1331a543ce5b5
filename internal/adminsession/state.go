package adminsession

import (
	"context"
	"sync"
	"time"

	"github.com/psychmag/psychmag/internal/core"
	"github.com/psychmag/psychmag/internal/logger"
	"github.com/psychmag/psychmag/internal/models"
)

// NoticeNotAuthorized is the message ID shown after a forced sign-out.
const NoticeNotAuthorized = "not_authorized"

const watcherBuffer = 8

// Snapshot is an immutable view of a tab's state.
type Snapshot struct {
	Phase    Phase  `json:"phase"`
	Email    string `json:"email,omitempty"`
	EditMode bool   `json:"edit_mode"`
	Notice   string `json:"notice,omitempty"`
	// Generation increases with every resolution or sign-out.
	Generation uint64 `json:"-"`
}

func (s Snapshot) IsAdmin() bool {
	return s.Phase.IsAdmin()
}

func (s Snapshot) IsSuperAdmin() bool {
	return s.Phase == PhaseSuperAdmin
}

// State is the authorization state of one browser tab. All mutation goes
// through Resolve, SignOut, EndSession and SetEditMode.
type State struct {
	id       string
	resolver *Resolver
	metrics  core.Recorder

	mu         sync.Mutex
	phase      Phase
	identity   *core.Identity
	admin      *models.Admin
	editMode   bool
	notice     string
	token      string
	released   string
	generation uint64
	resolving  bool
	settled    chan struct{}
	lastSeen   time.Time

	watchers    map[int]chan Snapshot
	nextWatcher int
}

// NewState returns a tab state in PhaseLoading.
func NewState(id string, resolver *Resolver, metrics core.Recorder) *State {
	return &State{
		id:       id,
		resolver: resolver,
		metrics:  metrics,
		phase:    PhaseLoading,
		settled:  make(chan struct{}),
		lastSeen: time.Now(),
		watchers: make(map[int]chan Snapshot),
	}
}

func (s *State) ID() string {
	return s.id
}

// Snapshot returns the current state and marks the tab as seen.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	return s.snapshotLocked()
}

// Token returns the access token the tab is bound to.
func (s *State) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Admin returns the allowlist row behind an admin phase, or nil.
func (s *State) Admin() *models.Admin {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.phase.IsAdmin() {
		return nil
	}
	return s.admin
}

// Released returns the last access token the tab let go of after a
// sign-out, a forced sign-out or an expired session.
func (s *State) Released() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

// idleSince reports when the tab was last seen. Watched tabs count as seen now.
func (s *State) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.watchers) > 0 {
		return time.Now()
	}
	return s.lastSeen
}

// Resolve binds the tab to accessToken and classifies its identity. A
// resolution that finishes after a newer Resolve or SignOut is discarded.
func (s *State) Resolve(ctx context.Context, accessToken string) Snapshot {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	if accessToken != s.token {
		s.token = accessToken
		s.enterLocked(PhaseLoading, nil, nil, "")
	}
	s.resolving = true
	s.lastSeen = time.Now()
	s.mu.Unlock()

	res := s.resolver.Resolve(ctx, accessToken)

	s.mu.Lock()
	if gen != s.generation {
		current := s.token
		snap := s.snapshotLocked()
		s.mu.Unlock()

		logger.Debugf("tab %s: discarding stale resolution %d", s.id, gen)
		if s.metrics != nil {
			s.metrics.RecordStaleResolution()
		}
		if res.Decision.SignOut && accessToken != current {
			s.resolver.ForceSignOut(ctx, accessToken, res.Identity)
		}
		return snap
	}

	s.resolving = false
	switch {
	case res.Decision.SignOut:
		s.releaseLocked()
		s.enterLocked(PhaseUnauthorized, nil, nil, NoticeNotAuthorized)
	case res.ProviderErr != nil, res.Decision.Err != nil:
		// Keep the token so the next auth event can retry.
		s.enterLocked(res.Decision.Phase, nil, nil, "")
	case res.Identity == nil:
		s.releaseLocked()
		s.enterLocked(PhaseAnonymous, nil, nil, "")
	default:
		s.enterLocked(res.Decision.Phase, res.Identity, res.Decision.Admin, "")
	}
	s.settleLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if res.Decision.SignOut {
		s.resolver.ForceSignOut(ctx, accessToken, res.Identity)
	}
	return snap
}

// Settle resolves accessToken like Resolve. When a concurrent resolution of
// the same token overtook this one, it waits for that resolution to commit
// instead of returning the loading snapshot.
func (s *State) Settle(ctx context.Context, accessToken string) Snapshot {
	snap := s.Resolve(ctx, accessToken)
	for snap.Phase == PhaseLoading {
		s.mu.Lock()
		snap = s.snapshotLocked()
		pending := s.resolving && s.token == accessToken
		settled := s.settled
		s.mu.Unlock()
		if snap.Phase != PhaseLoading || !pending {
			return snap
		}

		select {
		case <-settled:
		case <-ctx.Done():
			return snap
		}
		snap = s.Snapshot()
	}
	return snap
}

// ResolveInBackground starts a resolution when the tab is still loading and
// none is in flight for accessToken.
func (s *State) ResolveInBackground(accessToken string) bool {
	s.mu.Lock()
	if s.phase != PhaseLoading || (s.resolving && s.token == accessToken) {
		s.mu.Unlock()
		return false
	}
	s.resolving = true
	s.mu.Unlock()

	go s.Resolve(context.Background(), accessToken)
	return true
}

// SignOut ends the tab's session at the provider and moves it to
// PhaseAnonymous. Signing out an anonymous tab does nothing.
func (s *State) SignOut(ctx context.Context) Snapshot {
	s.mu.Lock()
	if s.phase == PhaseAnonymous && s.token == "" {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap
	}

	token := s.token
	email := ""
	if s.identity != nil {
		email = s.identity.Email
	}
	s.generation++
	s.resolving = false
	s.releaseLocked()
	s.enterLocked(PhaseAnonymous, nil, nil, "")
	s.settleLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if err := s.resolver.EndSession(ctx, token); err != nil {
		logger.Warningf("provider sign-out for %s failed: %v", email, err)
	}
	return snap
}

// EndSession moves the tab to PhaseAnonymous when its session bound to
// accessToken ended elsewhere. The provider is not contacted.
func (s *State) EndSession(accessToken string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if accessToken == "" || s.token != accessToken {
		return false
	}
	s.generation++
	s.resolving = false
	s.releaseLocked()
	s.enterLocked(PhaseAnonymous, nil, nil, "")
	s.settleLocked()
	return true
}

// SetEditMode toggles edit mode. Enabling it outside an admin phase is ignored.
func (s *State) SetEditMode(on bool) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	if on && !s.phase.IsAdmin() {
		return s.snapshotLocked()
	}
	if s.editMode != on {
		s.editMode = on
		s.broadcastLocked()
	}
	return s.snapshotLocked()
}

// Watch returns a channel receiving every committed snapshot. Slow
// watchers miss updates rather than block the state.
func (s *State) Watch() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextWatcher
	s.nextWatcher++
	ch := make(chan Snapshot, watcherBuffer)
	s.watchers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.watchers, id)
			close(ch)
		})
	}
}

// enterLocked commits a phase change. Edit mode is cleared in the same
// update whenever the new phase is not an admin phase.
func (s *State) enterLocked(phase Phase, identity *core.Identity, admin *models.Admin, notice string) {
	s.phase = phase
	s.identity = identity
	s.admin = admin
	s.notice = notice
	if !phase.IsAdmin() {
		s.editMode = false
	}
	s.broadcastLocked()
}

func (s *State) releaseLocked() {
	if s.token != "" {
		s.released = s.token
	}
	s.token = ""
}

// settleLocked wakes callers of Settle waiting for the current resolution.
func (s *State) settleLocked() {
	close(s.settled)
	s.settled = make(chan struct{})
}

func (s *State) snapshotLocked() Snapshot {
	snap := Snapshot{
		Phase:      s.phase,
		EditMode:   s.editMode,
		Notice:     s.notice,
		Generation: s.generation,
	}
	if s.identity != nil {
		snap.Email = models.NormalizeEmail(s.identity.Email)
	}
	return snap
}

func (s *State) broadcastLocked() {
	snap := s.snapshotLocked()
	for _, ch := range s.watchers {
		select {
		case ch <- snap:
		default:
		}
	}
}
