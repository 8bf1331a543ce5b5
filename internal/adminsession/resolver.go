package adminsession

import (
	"context"
	"time"

	"github.com/psychmag/psychmag/internal/core"
	"github.com/psychmag/psychmag/internal/logger"
	"github.com/psychmag/psychmag/internal/models"
	"github.com/psychmag/psychmag/internal/services"
)

// Resolution is the identity found for an access token and its classification.
type Resolution struct {
	Identity *core.Identity
	Decision Decision
	// ProviderErr is set when the identity provider could not be reached.
	// The token may still carry a live session.
	ProviderErr error
}

// Resolver turns an access token into a Resolution.
type Resolver struct {
	provider core.IdentityProvider
	gate     *Gate
	auditor  services.Auditor
	metrics  core.Recorder
	timeout  time.Duration
}

func NewResolver(
	provider core.IdentityProvider,
	gate *Gate,
	auditor services.Auditor,
	metrics core.Recorder,
	timeout time.Duration,
) *Resolver {
	return &Resolver{
		provider: provider,
		gate:     gate,
		auditor:  auditor,
		metrics:  metrics,
		timeout:  timeout,
	}
}

func (r *Resolver) Provider() core.IdentityProvider {
	return r.provider
}

func (r *Resolver) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

// Resolve looks up the identity bound to accessToken and classifies it.
// Provider failures resolve to anonymous.
func (r *Resolver) Resolve(ctx context.Context, accessToken string) Resolution {
	if accessToken == "" {
		return Resolution{Decision: Decision{Phase: PhaseAnonymous}}
	}

	lookupCtx, cancel := r.withTimeout(ctx)
	identity, err := r.provider.CurrentIdentity(lookupCtx, accessToken)
	cancel()
	if err != nil {
		logger.Warningf("identity lookup via %s failed: %v", r.provider.Name(), err)
		return Resolution{Decision: Decision{Phase: PhaseAnonymous}, ProviderErr: err}
	}

	decision := r.gate.Classify(ctx, identity)
	if decision.Err != nil {
		r.audit(ctx, services.AuditLogEntry{
			EventType:    models.EventAuthLookupFail,
			Severity:     models.SeverityError,
			ActorEmail:   models.NormalizeEmail(identity.Email),
			ResourceType: models.ResourceSession,
			Action:       "Admin allowlist lookup failed",
			ErrorMessage: decision.Err.Error(),
		})
	}
	return Resolution{Identity: identity, Decision: decision}
}

// ForceSignOut terminates the session of an identity that is not on the
// allowlist. It runs detached from ctx cancellation.
func (r *Resolver) ForceSignOut(ctx context.Context, accessToken string, identity *core.Identity) {
	email := ""
	if identity != nil {
		email = models.NormalizeEmail(identity.Email)
	}

	signOutCtx, cancel := r.withTimeout(context.WithoutCancel(ctx))
	defer cancel()

	err := r.provider.SignOut(signOutCtx, accessToken)
	if err != nil {
		logger.Errorf("forced sign-out of %s failed: %v", email, err)
	} else {
		logger.Infof("signed out %s: not on the admin allowlist", email)
	}
	if r.metrics != nil {
		r.metrics.RecordForcedSignOut()
	}

	entry := services.AuditLogEntry{
		EventType:    models.EventForcedSignOut,
		Severity:     models.SeverityWarning,
		ActorEmail:   email,
		ResourceType: models.ResourceSession,
		ResourceID:   email,
		Action:       "Signed out identity without admin access",
		Success:      err == nil,
	}
	if err != nil {
		entry.ErrorMessage = err.Error()
	}
	r.audit(ctx, entry)
}

// EndSession signs accessToken out at the provider.
func (r *Resolver) EndSession(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	signOutCtx, cancel := r.withTimeout(context.WithoutCancel(ctx))
	defer cancel()
	return r.provider.SignOut(signOutCtx, accessToken)
}

func (r *Resolver) audit(ctx context.Context, entry services.AuditLogEntry) {
	if r.auditor != nil {
		r.auditor.Log(ctx, entry)
	}
}
