package bootstrap

import (
	"fmt"

	"github.com/psychmag/psychmag/internal/auth"
	"github.com/psychmag/psychmag/internal/client"
	"github.com/psychmag/psychmag/internal/config"
	"github.com/psychmag/psychmag/internal/core"
	"github.com/psychmag/psychmag/internal/logger"
	"github.com/psychmag/psychmag/internal/store"
)

// initializeIdentityProvider creates the sign-in backend selected by AUTH_MODE.
// A nil sender logs sign-in links.
func initializeIdentityProvider(
	cfg *config.Config,
	db *store.Store,
	sender auth.LinkSender,
	recorder core.Recorder,
) (core.IdentityProvider, error) {
	notifier := auth.NewNotifier()

	switch cfg.AuthMode {
	case config.AuthModeHTTPAPI:
		apiClient, err := client.NewAuthAPIClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create auth API client: %w", err)
		}
		logger.Infof("Identity provider: hosted auth API at %s", cfg.HTTPAPIURL)
		return auth.NewHTTPAPIIdentityProvider(cfg, apiClient, notifier, recorder), nil
	default:
		logger.Infof("Identity provider: local passwordless links")
		return auth.NewLocalIdentityProvider(cfg, db, sender, notifier), nil
	}
}
