package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/psychmag/psychmag/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuthAPIClient_SendsSecretHeader(t *testing.T) {
	var gotSecret string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSecret = r.Header.Get("X-API-Secret")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c, err := NewAuthAPIClient(&config.Config{
		HTTPAPIAuthMode:      "simple",
		HTTPAPIAuthSecret:    "shared-secret",
		HTTPAPIAuthHeader:    "X-API-Secret",
		HTTPAPITimeout:       5 * time.Second,
		HTTPAPIMaxRetries:    0,
		HTTPAPIRetryDelay:    time.Millisecond,
		HTTPAPIMaxRetryDelay: time.Millisecond,
	})
	require.NoError(t, err)

	resp, err := c.Post(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "shared-secret", gotSecret)
}
