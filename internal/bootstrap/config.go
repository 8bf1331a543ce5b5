package bootstrap

import (
	"errors"
	"fmt"

	"github.com/psychmag/psychmag/internal/config"
)

// CheckConfig reports every configuration problem at once so an operator
// can fix the environment in one pass.
func CheckConfig(cfg *config.Config) error {
	var errs []error
	if err := cfg.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := validateSessionConfig(cfg); err != nil {
		errs = append(errs, fmt.Errorf("session: %w", err))
	}
	return errors.Join(errs...)
}

func validateSessionConfig(cfg *config.Config) error {
	if len(cfg.SessionSecret) < 16 {
		return errors.New("SESSION_SECRET must be at least 16 bytes")
	}
	if cfg.SessionMaxAge < 0 {
		return errors.New("SESSION_MAX_AGE must not be negative")
	}
	return nil
}
