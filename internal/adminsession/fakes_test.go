package adminsession

import (
	"context"
	"errors"
	"sync"

	"github.com/psychmag/psychmag/internal/core"
	"github.com/psychmag/psychmag/internal/models"
	"github.com/psychmag/psychmag/internal/services"
	"github.com/psychmag/psychmag/internal/store"
)

var errBackendDown = errors.New("backend down")

// fakeAllowlist is an in-memory AdminLookup.
type fakeAllowlist struct {
	mu     sync.Mutex
	admins map[string]bool
	err    error
	calls  []string
}

func newAllowlist(rows map[string]bool) *fakeAllowlist {
	return &fakeAllowlist{admins: rows}
}

func (f *fakeAllowlist) GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, email)
	if f.err != nil {
		return nil, f.err
	}
	isSuper, ok := f.admins[email]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	return &models.Admin{Email: email, IsSuperAdmin: isSuper}, nil
}

// fakeProvider maps access tokens to identities. A token registered in
// gates blocks CurrentIdentity until the gate channel is closed.
type fakeProvider struct {
	mu         sync.Mutex
	identities map[string]*core.Identity
	gates      map[string]chan struct{}
	started    chan string
	err        error
	signedOut  []string
	notifier   *fakeNotifier
}

func newProvider() *fakeProvider {
	return &fakeProvider{
		identities: make(map[string]*core.Identity),
		gates:      make(map[string]chan struct{}),
		started:    make(chan string, 16),
		notifier:   &fakeNotifier{},
	}
}

func (p *fakeProvider) signIn(token, email string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.identities[token] = &core.Identity{Subject: "sub-" + email, Email: email}
}

func (p *fakeProvider) block(token string) chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch := make(chan struct{})
	p.gates[token] = ch
	return ch
}

func (p *fakeProvider) signOuts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.signedOut...)
}

func (p *fakeProvider) RequestSignInLink(ctx context.Context, email, redirect string) error {
	return nil
}

func (p *fakeProvider) CompleteSignIn(ctx context.Context, linkToken string) (*core.AuthSession, error) {
	return nil, errors.New("not implemented")
}

func (p *fakeProvider) CurrentIdentity(ctx context.Context, accessToken string) (*core.Identity, error) {
	p.mu.Lock()
	gate := p.gates[accessToken]
	p.mu.Unlock()

	select {
	case p.started <- accessToken:
	default:
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	return p.identities[accessToken], nil
}

func (p *fakeProvider) SignOut(ctx context.Context, accessToken string) error {
	p.mu.Lock()
	p.signedOut = append(p.signedOut, accessToken)
	delete(p.identities, accessToken)
	p.mu.Unlock()
	p.notifier.publish(core.SessionEvent{Kind: core.SessionSignedOut, AccessToken: accessToken})
	return nil
}

func (p *fakeProvider) Subscribe() (<-chan core.SessionEvent, func()) {
	return p.notifier.subscribe()
}

func (p *fakeProvider) Name() string {
	return "fake"
}

type fakeNotifier struct {
	mu   sync.Mutex
	subs []chan core.SessionEvent
}

func (n *fakeNotifier) subscribe() (<-chan core.SessionEvent, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	ch := make(chan core.SessionEvent, 16)
	n.subs = append(n.subs, ch)
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			for i, s := range n.subs {
				if s == ch {
					n.subs = append(n.subs[:i], n.subs[i+1:]...)
					break
				}
			}
			close(ch)
		})
	}
}

func (n *fakeNotifier) publish(ev core.SessionEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}

// captureAuditor records audit entries.
type captureAuditor struct {
	mu      sync.Mutex
	entries []services.AuditLogEntry
}

func (a *captureAuditor) Log(ctx context.Context, entry services.AuditLogEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
}

func (a *captureAuditor) events() []models.EventType {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.EventType, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.EventType)
	}
	return out
}
