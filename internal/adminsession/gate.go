package adminsession

import (
	"context"
	"errors"
	"time"

	"github.com/psychmag/psychmag/internal/core"
	"github.com/psychmag/psychmag/internal/logger"
	"github.com/psychmag/psychmag/internal/models"
	"github.com/psychmag/psychmag/internal/store"
)

// AdminLookup is the allowlist query the gate needs.
type AdminLookup interface {
	GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error)
}

// Decision is the outcome of classifying an identity.
type Decision struct {
	Phase Phase
	Admin *models.Admin
	// SignOut is set when the identity is not on the allowlist and its
	// session must be terminated.
	SignOut bool
	// Err carries the lookup failure behind a fail-closed decision.
	Err error
}

// Gate classifies identities against the admin allowlist.
type Gate struct {
	admins  AdminLookup
	timeout time.Duration
	metrics core.Recorder
}

func NewGate(admins AdminLookup, timeout time.Duration, metrics core.Recorder) *Gate {
	return &Gate{admins: admins, timeout: timeout, metrics: metrics}
}

// Classify maps identity to an authorization phase. It never returns an
// admin phase on error: a failed lookup yields PhaseUnauthorized without
// SignOut, a missing row yields PhaseUnauthorized with SignOut.
func (g *Gate) Classify(ctx context.Context, identity *core.Identity) Decision {
	if identity == nil {
		return Decision{Phase: PhaseAnonymous}
	}

	start := time.Now()
	decision := g.classify(ctx, models.NormalizeEmail(identity.Email))
	if g.metrics != nil {
		g.metrics.RecordAuthorization(decision.Phase.String(), time.Since(start))
	}
	return decision
}

func (g *Gate) classify(ctx context.Context, email string) Decision {
	if email == "" {
		return Decision{Phase: PhaseUnauthorized, SignOut: true}
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	admin, err := g.admins.GetAdminByEmail(ctx, email)
	switch {
	case errors.Is(err, store.ErrRecordNotFound):
		return Decision{Phase: PhaseUnauthorized, SignOut: true}
	case err != nil:
		logger.Warningf("allowlist lookup for %s failed: %v", email, err)
		if g.metrics != nil {
			g.metrics.RecordDatabaseQueryError("get_admin_by_email")
		}
		return Decision{Phase: PhaseUnauthorized, Err: err}
	case admin == nil:
		return Decision{Phase: PhaseUnauthorized, SignOut: true}
	case admin.IsSuperAdmin:
		return Decision{Phase: PhaseSuperAdmin, Admin: admin}
	default:
		return Decision{Phase: PhaseAdmin, Admin: admin}
	}
}
