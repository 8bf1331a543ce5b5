// Package adminsession decides who may manage content and tracks the
// per-tab authorization state and edit-mode toggle derived from it.
package adminsession

// Phase is the authorization state of a browser tab.
type Phase string

const (
	PhaseLoading      Phase = "loading"
	PhaseAnonymous    Phase = "anonymous"
	PhaseUnauthorized Phase = "unauthorized"
	PhaseAdmin        Phase = "admin"
	PhaseSuperAdmin   Phase = "super_admin"
)

// IsAdmin reports whether p grants content management.
func (p Phase) IsAdmin() bool {
	return p == PhaseAdmin || p == PhaseSuperAdmin
}

func (p Phase) String() string {
	return string(p)
}
