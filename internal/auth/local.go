package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/psychmag/psychmag/internal/config"
	"github.com/psychmag/psychmag/internal/core"
	"github.com/psychmag/psychmag/internal/logger"
	"github.com/psychmag/psychmag/internal/models"
	"github.com/psychmag/psychmag/internal/store"
	"github.com/psychmag/psychmag/internal/token"
	"github.com/psychmag/psychmag/internal/util"

	"github.com/google/uuid"
)

var _ core.IdentityProvider = (*LocalIdentityProvider)(nil)

// localStore is the subset of store.Store used by LocalIdentityProvider.
type localStore interface {
	CreateSignInLink(ctx context.Context, link *models.SignInLink) error
	GetSignInLink(ctx context.Context, id string) (*models.SignInLink, error)
	ConsumeSignInLink(ctx context.Context, id string) error
	RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

// LocalIdentityProvider implements passwordless sign-in on top of the
// application database. Link and access tokens are HS256 JWTs; only a salted
// hash of each link token is stored so a database leak cannot replay links.
type LocalIdentityProvider struct {
	store    localStore
	tokens   *token.LocalTokenProvider
	sender   LinkSender
	notifier *Notifier

	baseURL     string
	linkTTL     time.Duration
	sessionTTL  time.Duration
	callbackURL string
}

func NewLocalIdentityProvider(
	cfg *config.Config,
	s localStore,
	sender LinkSender,
	notifier *Notifier,
) *LocalIdentityProvider {
	if sender == nil {
		sender = LogLinkSender{}
	}
	if notifier == nil {
		notifier = NewNotifier()
	}
	return &LocalIdentityProvider{
		store:       s,
		tokens:      token.NewLocalTokenProvider(cfg),
		sender:      sender,
		notifier:    notifier,
		baseURL:     cfg.BaseURL,
		linkTTL:     cfg.SignInLinkExpiration,
		sessionTTL:  cfg.AuthSessionExpiration,
		callbackURL: strings.TrimRight(cfg.BaseURL, "/") + "/auth/callback",
	}
}

func (p *LocalIdentityProvider) RequestSignInLink(ctx context.Context, email, redirect string) error {
	email = models.NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return err
	}
	if !util.IsRedirectSafe(redirect, p.baseURL) {
		redirect = ""
	}

	linkID := uuid.New().String()
	signed, err := p.tokens.Generate("", email, token.PurposeSignInLink, linkID, p.linkTTL)
	if err != nil {
		return err
	}

	salt, err := util.CryptoRandomString(16)
	if err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	link := &models.SignInLink{
		ID:        linkID,
		Email:     email,
		TokenHash: util.HashToken(signed.TokenString, salt),
		TokenSalt: salt,
		Redirect:  redirect,
		ExpiresAt: signed.ExpiresAt,
	}
	if err := p.store.CreateSignInLink(ctx, link); err != nil {
		return fmt.Errorf("failed to store sign-in link: %w", err)
	}

	q := url.Values{}
	q.Set("token", signed.TokenString)
	if redirect != "" {
		q.Set("redirect", redirect)
	}
	return p.sender.SendSignInLink(ctx, email, p.callbackURL+"?"+q.Encode())
}

func (p *LocalIdentityProvider) CompleteSignIn(
	ctx context.Context,
	linkToken string,
) (*core.AuthSession, error) {
	claims, err := p.tokens.Validate(linkToken, token.PurposeSignInLink)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignInLink, err)
	}

	link, err := p.store.GetSignInLink(ctx, claims.TokenID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, ErrInvalidSignInLink
		}
		return nil, err
	}
	if link.IsUsed() || link.IsExpired() ||
		!util.VerifyToken(linkToken, link.TokenSalt, link.TokenHash) {
		return nil, ErrInvalidSignInLink
	}
	if err := p.store.ConsumeSignInLink(ctx, link.ID); err != nil {
		if errors.Is(err, store.ErrSignInLinkUsed) {
			return nil, ErrInvalidSignInLink
		}
		return nil, err
	}

	subject := uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+link.Email)).String()
	access, err := p.tokens.Generate(subject, link.Email, token.PurposeAccess, "", p.sessionTTL)
	if err != nil {
		return nil, err
	}

	session := &core.AuthSession{
		AccessToken: access.TokenString,
		ExpiresAt:   access.ExpiresAt,
		Identity:    core.Identity{Subject: subject, Email: link.Email},
	}
	p.notifier.Publish(core.SessionEvent{Kind: core.SessionSignedIn, AccessToken: access.TokenString})
	return session, nil
}

// CurrentIdentity returns nil for empty, malformed, expired or revoked tokens.
func (p *LocalIdentityProvider) CurrentIdentity(
	ctx context.Context,
	accessToken string,
) (*core.Identity, error) {
	if accessToken == "" {
		return nil, nil
	}
	claims, err := p.tokens.Validate(accessToken, token.PurposeAccess)
	if err != nil {
		logger.Debugf("access token rejected: %v", err)
		return nil, nil
	}
	revoked, err := p.store.IsTokenRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, nil
	}
	return &core.Identity{Subject: claims.Subject, Email: claims.Email}, nil
}

func (p *LocalIdentityProvider) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	claims, err := p.tokens.Validate(accessToken, token.PurposeAccess)
	if err != nil {
		// Expired or foreign tokens carry no session to end.
		return nil
	}
	if err := p.store.RevokeToken(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		return err
	}
	p.notifier.Publish(core.SessionEvent{Kind: core.SessionSignedOut, AccessToken: accessToken})
	return nil
}

func (p *LocalIdentityProvider) Subscribe() (<-chan core.SessionEvent, func()) {
	return p.notifier.Subscribe()
}

func (p *LocalIdentityProvider) Name() string {
	return "local"
}

func validateEmail(email string) error {
	if !util.IsValidEmail(email) {
		return ErrInvalidEmail
	}
	return nil
}
