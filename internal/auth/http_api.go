package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/psychmag/psychmag/internal/config"
	"github.com/psychmag/psychmag/internal/core"
	"github.com/psychmag/psychmag/internal/models"
	"github.com/psychmag/psychmag/internal/util"

	retry "github.com/appleboy/go-httpretry"
)

var _ core.IdentityProvider = (*HTTPAPIIdentityProvider)(nil)

// HTTPAPIIdentityProvider delegates passwordless sign-in to a hosted auth service.
type HTTPAPIIdentityProvider struct {
	baseURL     string
	siteURL     string
	retryClient *retry.Client
	notifier    *Notifier
	metrics     core.Recorder
}

func NewHTTPAPIIdentityProvider(
	cfg *config.Config,
	retryClient *retry.Client,
	notifier *Notifier,
	metrics core.Recorder,
) *HTTPAPIIdentityProvider {
	if notifier == nil {
		notifier = NewNotifier()
	}
	return &HTTPAPIIdentityProvider{
		baseURL:     strings.TrimRight(cfg.HTTPAPIURL, "/"),
		siteURL:     cfg.BaseURL,
		retryClient: retryClient,
		notifier:    notifier,
		metrics:     metrics,
	}
}

// APIUser is the user object returned by the auth service.
type APIUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// APIResponse is the envelope of every auth service response
type APIResponse struct {
	Success     bool     `json:"success"`
	Message     string   `json:"message,omitempty"`
	AccessToken string   `json:"access_token,omitempty"`
	ExpiresIn   int64    `json:"expires_in,omitempty"`
	User        *APIUser `json:"user,omitempty"`
}

type otpRequest struct {
	Email      string `json:"email"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

type verifyRequest struct {
	Token string `json:"token"`
}

type accessTokenRequest struct {
	AccessToken string `json:"access_token"`
}

// post sends a JSON body to endpoint and returns the status code and body.
func (p *HTTPAPIIdentityProvider) post(
	ctx context.Context,
	endpoint string,
	reqBody any,
) (int, []byte, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	start := time.Now()
	resp, err := p.retryClient.Post(
		ctx,
		p.baseURL+endpoint,
		retry.WithBody("application/json", bytes.NewBuffer(jsonData)),
	)
	if p.metrics != nil {
		p.metrics.RecordExternalAPICall(p.Name(), time.Since(start))
	}
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrHTTPAPIConnection, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("%w: failed to read response", ErrHTTPAPIInvalidResp)
	}
	return resp.StatusCode, body, nil
}

// statusError builds the error for a non-2xx response.
func statusError(status int, body []byte) error {
	var apiResp APIResponse
	if err := json.Unmarshal(body, &apiResp); err == nil && apiResp.Message != "" {
		return fmt.Errorf("%w: HTTP %d - %s", ErrHTTPAPIAuthFailed, status, apiResp.Message)
	}
	// Only the head of the body is logged.
	bodyPreview := string(body)
	if len(bodyPreview) > 200 {
		bodyPreview = bodyPreview[:200] + "..."
	}
	return fmt.Errorf("%w: HTTP %d - %s", ErrHTTPAPIInvalidResp, status, bodyPreview)
}

func decode(body []byte) (*APIResponse, error) {
	var apiResp APIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHTTPAPIInvalidResp, err)
	}
	return &apiResp, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func (p *HTTPAPIIdentityProvider) RequestSignInLink(
	ctx context.Context,
	email, redirect string,
) error {
	email = models.NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return err
	}
	if !util.IsRedirectSafe(redirect, p.siteURL) {
		redirect = ""
	}

	status, body, err := p.post(ctx, "/otp", otpRequest{Email: email, RedirectTo: redirect})
	if err != nil {
		return err
	}
	if !isSuccess(status) {
		return statusError(status, body)
	}
	apiResp, err := decode(body)
	if err != nil {
		return err
	}
	if !apiResp.Success {
		return fmt.Errorf("%w: %s", ErrHTTPAPIAuthFailed, apiResp.Message)
	}
	return nil
}

func (p *HTTPAPIIdentityProvider) CompleteSignIn(
	ctx context.Context,
	linkToken string,
) (*core.AuthSession, error) {
	status, body, err := p.post(ctx, "/verify", verifyRequest{Token: linkToken})
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized || status == http.StatusBadRequest {
		return nil, ErrInvalidSignInLink
	}
	if !isSuccess(status) {
		return nil, statusError(status, body)
	}

	apiResp, err := decode(body)
	if err != nil {
		return nil, err
	}
	if !apiResp.Success {
		return nil, ErrInvalidSignInLink
	}
	if apiResp.AccessToken == "" || apiResp.User == nil || apiResp.User.Email == "" {
		return nil, fmt.Errorf(
			"%w: success=true but missing access_token or user",
			ErrHTTPAPIInvalidResp,
		)
	}

	session := &core.AuthSession{
		AccessToken: apiResp.AccessToken,
		ExpiresAt:   time.Now().Add(time.Duration(apiResp.ExpiresIn) * time.Second),
		Identity:    core.Identity{Subject: apiResp.User.ID, Email: apiResp.User.Email},
	}
	p.notifier.Publish(core.SessionEvent{Kind: core.SessionSignedIn, AccessToken: apiResp.AccessToken})
	return session, nil
}

// CurrentIdentity returns nil when the service reports the token as unknown or expired.
func (p *HTTPAPIIdentityProvider) CurrentIdentity(
	ctx context.Context,
	accessToken string,
) (*core.Identity, error) {
	if accessToken == "" {
		return nil, nil
	}
	status, body, err := p.post(ctx, "/user", accessTokenRequest{AccessToken: accessToken})
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized || status == http.StatusNotFound {
		return nil, nil
	}
	if !isSuccess(status) {
		return nil, statusError(status, body)
	}

	apiResp, err := decode(body)
	if err != nil {
		return nil, err
	}
	if !apiResp.Success || apiResp.User == nil || apiResp.User.Email == "" {
		return nil, nil
	}
	return &core.Identity{Subject: apiResp.User.ID, Email: apiResp.User.Email}, nil
}

func (p *HTTPAPIIdentityProvider) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	status, body, err := p.post(ctx, "/logout", accessTokenRequest{AccessToken: accessToken})
	if err != nil {
		return err
	}
	if !isSuccess(status) && status != http.StatusUnauthorized && status != http.StatusNotFound {
		return statusError(status, body)
	}
	p.notifier.Publish(core.SessionEvent{Kind: core.SessionSignedOut, AccessToken: accessToken})
	return nil
}

func (p *HTTPAPIIdentityProvider) Subscribe() (<-chan core.SessionEvent, func()) {
	return p.notifier.Subscribe()
}

func (p *HTTPAPIIdentityProvider) Name() string {
	return "http_api"
}
