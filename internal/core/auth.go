package core

import (
	"context"
	"time"
)

// Identity is the authenticated principal supplied by the identity provider.
// The application only relies on its e-mail address.
type Identity struct {
	Subject string // provider-side user ID
	Email   string
}

// AuthSession is the outcome of completing a passwordless sign-in.
type AuthSession struct {
	AccessToken string
	ExpiresAt   time.Time
	Identity    Identity
}

// SessionEventKind names a change of the external auth session.
type SessionEventKind string

const (
	SessionSignedIn    SessionEventKind = "signed_in"
	SessionSignedOut   SessionEventKind = "signed_out"
	SessionUserUpdated SessionEventKind = "user_updated"
)

// SessionEvent is published by an identity provider whenever the session bound
// to AccessToken changes.
type SessionEvent struct {
	Kind        SessionEventKind
	AccessToken string
}

// IdentityProvider is the interface that sign-in backends must implement.
// Both LocalIdentityProvider and HTTPAPIIdentityProvider satisfy it.
type IdentityProvider interface {
	// RequestSignInLink starts a passwordless sign-in for email.
	RequestSignInLink(ctx context.Context, email, redirect string) error
	// CompleteSignIn exchanges a sign-in link token for an access token.
	CompleteSignIn(ctx context.Context, linkToken string) (*AuthSession, error)
	// CurrentIdentity returns the identity bound to accessToken, or nil when
	// the token carries no live session.
	CurrentIdentity(ctx context.Context, accessToken string) (*Identity, error)
	// SignOut ends the session bound to accessToken. Ending an unknown or
	// already ended session is not an error.
	SignOut(ctx context.Context, accessToken string) error
	// Subscribe returns a channel of session changes and a function that
	// cancels the subscription.
	Subscribe() (<-chan SessionEvent, func())
	Name() string
}
