// Package client builds outbound HTTP clients for service-to-service calls.
package client

import (
	"fmt"

	"github.com/psychmag/psychmag/internal/config"

	httpclient "github.com/appleboy/go-httpclient"
	retry "github.com/appleboy/go-httpretry"
)

// NewAuthAPIClient creates the retrying, authenticated client used to reach
// the hosted auth service configured by the HTTP_API_* settings.
func NewAuthAPIClient(cfg *config.Config) (*retry.Client, error) {
	client, err := httpclient.NewAuthClient(
		cfg.HTTPAPIAuthMode,
		cfg.HTTPAPIAuthSecret,
		httpclient.WithTimeout(cfg.HTTPAPITimeout),
		httpclient.WithHeaderName(cfg.HTTPAPIAuthHeader),
		httpclient.WithInsecureSkipVerify(cfg.HTTPAPIInsecureSkipVerify),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth client: %w", err)
	}

	retryClient, err := retry.NewRealtimeClient(
		retry.WithHTTPClient(client),
		retry.WithMaxRetries(cfg.HTTPAPIMaxRetries),
		retry.WithInitialRetryDelay(cfg.HTTPAPIRetryDelay),
		retry.WithMaxRetryDelay(cfg.HTTPAPIMaxRetryDelay),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create retry client: %w", err)
	}

	return retryClient, nil
}
