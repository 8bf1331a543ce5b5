package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/psychmag/psychmag/internal/client"
	"github.com/psychmag/psychmag/internal/config"
	"github.com/psychmag/psychmag/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHTTPAPIProvider(t *testing.T, handler http.HandlerFunc) *HTTPAPIIdentityProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		BaseURL:              "http://localhost:8080",
		HTTPAPIURL:           server.URL + "/",
		HTTPAPITimeout:       5 * time.Second,
		HTTPAPIAuthMode:      "none",
		HTTPAPIAuthHeader:    "X-API-Secret",
		HTTPAPIMaxRetries:    2,
		HTTPAPIRetryDelay:    time.Millisecond,
		HTTPAPIMaxRetryDelay: 5 * time.Millisecond,
	}
	rc, err := client.NewAuthAPIClient(cfg)
	require.NoError(t, err)
	return NewHTTPAPIIdentityProvider(cfg, rc, NewNotifier(), nil)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestHTTPAPIIdentityProvider_RequestSignInLink(t *testing.T) {
	var got otpRequest
	p := newHTTPAPIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/otp", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeJSON(w, http.StatusOK, APIResponse{Success: true})
	})

	require.NoError(t, p.RequestSignInLink(context.Background(), " Editor@X.com", "/admin"))
	assert.Equal(t, "editor@x.com", got.Email)
	assert.Equal(t, "/admin", got.RedirectTo)
}

func TestHTTPAPIIdentityProvider_CompleteSignIn(t *testing.T) {
	p := newHTTPAPIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var req verifyRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Token != "good" {
			writeJSON(w, http.StatusUnauthorized, APIResponse{Message: "invalid link"})
			return
		}
		writeJSON(w, http.StatusOK, APIResponse{
			Success:     true,
			AccessToken: "access-1",
			ExpiresIn:   3600,
			User:        &APIUser{ID: "u-1", Email: "admin@x.com"},
		})
	})
	events, cancel := p.Subscribe()
	defer cancel()

	session, err := p.CompleteSignIn(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "access-1", session.AccessToken)
	assert.Equal(t, "admin@x.com", session.Identity.Email)
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, 5*time.Second)
	assert.Equal(t, core.SessionSignedIn, (<-events).Kind)

	_, err = p.CompleteSignIn(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrInvalidSignInLink)
}

func TestHTTPAPIIdentityProvider_CompleteSignIn_MissingUser(t *testing.T) {
	p := newHTTPAPIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, APIResponse{Success: true, AccessToken: "x"})
	})

	_, err := p.CompleteSignIn(context.Background(), "good")
	assert.ErrorIs(t, err, ErrHTTPAPIInvalidResp)
}

func TestHTTPAPIIdentityProvider_CurrentIdentity(t *testing.T) {
	p := newHTTPAPIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var req accessTokenRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		switch req.AccessToken {
		case "live":
			writeJSON(w, http.StatusOK, APIResponse{
				Success: true,
				User:    &APIUser{ID: "u-1", Email: "admin@x.com"},
			})
		case "broken":
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("<html>forbidden</html>"))
		default:
			writeJSON(w, http.StatusUnauthorized, APIResponse{Message: "expired"})
		}
	})
	ctx := context.Background()

	identity, err := p.CurrentIdentity(ctx, "live")
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, "u-1", identity.Subject)

	identity, err = p.CurrentIdentity(ctx, "expired")
	require.NoError(t, err)
	assert.Nil(t, identity)

	identity, err = p.CurrentIdentity(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, identity)

	_, err = p.CurrentIdentity(ctx, "broken")
	assert.ErrorIs(t, err, ErrHTTPAPIInvalidResp)
}

func TestHTTPAPIIdentityProvider_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	p := newHTTPAPIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, APIResponse{
			Success: true,
			User:    &APIUser{ID: "u-1", Email: "admin@x.com"},
		})
	})

	identity, err := p.CurrentIdentity(context.Background(), "live")
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPAPIIdentityProvider_SignOutIsIdempotent(t *testing.T) {
	var calls atomic.Int32
	p := newHTTPAPIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/logout", r.URL.Path)
		if calls.Add(1) == 1 {
			writeJSON(w, http.StatusOK, APIResponse{Success: true})
			return
		}
		writeJSON(w, http.StatusUnauthorized, APIResponse{Message: "no session"})
	})
	ctx := context.Background()

	require.NoError(t, p.SignOut(ctx, "tok"))
	require.NoError(t, p.SignOut(ctx, "tok"))
	require.NoError(t, p.SignOut(ctx, ""))
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, "http_api", p.Name())
}

func TestHTTPAPIIdentityProvider_Unreachable(t *testing.T) {
	cfg := &config.Config{
		HTTPAPIURL:           "http://127.0.0.1:1",
		HTTPAPITimeout:       time.Second,
		HTTPAPIAuthMode:      "none",
		HTTPAPIMaxRetries:    0,
		HTTPAPIRetryDelay:    time.Millisecond,
		HTTPAPIMaxRetryDelay: time.Millisecond,
	}
	rc, err := client.NewAuthAPIClient(cfg)
	require.NoError(t, err)
	p := NewHTTPAPIIdentityProvider(cfg, rc, nil, nil)

	_, err = p.CurrentIdentity(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrHTTPAPIConnection)
}
