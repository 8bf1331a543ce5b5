package bootstrap

import (
	"context"
	"fmt"

	"github.com/psychmag/psychmag/internal/config"
	"github.com/psychmag/psychmag/internal/logger"
	"github.com/psychmag/psychmag/internal/store"
)

type storeResult struct {
	db  *store.Store
	err error
}

// initializeDatabase opens the store, giving up after DBInitTimeout
func initializeDatabase(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	if cfg.DBInitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DBInitTimeout)
		defer cancel()
	}

	done := make(chan storeResult, 1)
	go func() {
		db, err := store.New(cfg.DatabaseDriver, cfg.DatabaseDSN, cfg)
		done <- storeResult{db: db, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", res.err)
		}
		logger.Infof("Database initialized (driver: %s)", cfg.DatabaseDriver)
		return res.db, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to initialize database: %w", ctx.Err())
	}
}
