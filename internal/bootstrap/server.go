package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/psychmag/psychmag/internal/adminsession"
	"github.com/psychmag/psychmag/internal/config"
	"github.com/psychmag/psychmag/internal/core"
	"github.com/psychmag/psychmag/internal/logger"
	"github.com/psychmag/psychmag/internal/metrics"
	"github.com/psychmag/psychmag/internal/services"
	"github.com/psychmag/psychmag/internal/store"

	"github.com/appleboy/graceful"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

// createHTTPServer creates the HTTP server instance. WriteTimeout is left
// unset because session streams stay open for as long as the tab does.
func createHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// addServerRunningJob adds the HTTP server running job
func addServerRunningJob(m *graceful.Manager, srv *http.Server) {
	m.AddRunningJob(func(ctx context.Context) error {
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatalf("Failed to start server: %v", err)
			}
		}()
		<-ctx.Done()
		return nil
	})
}

// addServerShutdownJob adds HTTP server shutdown handler
func addServerShutdownJob(m *graceful.Manager, srv *http.Server) {
	m.AddShutdownJob(func() error {
		logger.Infof("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Errorf("Server forced to shutdown: %v", err)
			return err
		}

		logger.Infof("Server exited")
		return nil
	})
}

// addSessionManagerJob runs the tab manager's event loop for the life of the process
func addSessionManagerJob(m *graceful.Manager, manager *adminsession.Manager) {
	m.AddRunningJob(func(ctx context.Context) error {
		manager.Start(ctx)
		<-ctx.Done()
		return nil
	})
	m.AddShutdownJob(func() error {
		manager.Close()
		logger.Infof("Session manager stopped")
		return nil
	})
}

// addRedisClientShutdownJob adds Redis client shutdown handler
func addRedisClientShutdownJob(m *graceful.Manager, redisClient *redis.Client) {
	if redisClient == nil {
		return
	}

	m.AddShutdownJob(func() error {
		logger.Infof("Closing Redis connection...")
		if err := redisClient.Close(); err != nil {
			logger.Errorf("Error closing Redis client: %v", err)
			return err
		}
		logger.Infof("Redis connection closed")
		return nil
	})
}

// addAuditServiceShutdownJob flushes buffered audit entries
func addAuditServiceShutdownJob(m *graceful.Manager, auditService *services.AuditService) {
	m.AddShutdownJob(func() error {
		logger.Infof("Shutting down audit service...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := auditService.Shutdown(ctx); err != nil {
			logger.Errorf("Error shutting down audit service: %v", err)
			return err
		}
		return nil
	})
}

// addCacheShutdownJob closes a cache on shutdown
func addCacheShutdownJob[T any](m *graceful.Manager, name string, c core.Cache[T]) {
	if c == nil {
		return
	}

	m.AddShutdownJob(func() error {
		if err := c.Close(); err != nil {
			logger.Errorf("Error closing %s cache: %v", name, err)
		} else {
			logger.Infof("%s cache closed", name)
		}
		return nil
	})
}

// maintenance holds what the periodic cleanup touches
type maintenance struct {
	cfg          *config.Config
	db           *store.Store
	audit        *services.AuditService
	manager      *adminsession.Manager
	recorder     core.Recorder
	contentCache purger
	gauges       *metrics.CacheWrapper
}

// addMaintenanceJob schedules cleanup on cfg.MaintenanceSchedule and runs
// it once at startup
func addMaintenanceJob(m *graceful.Manager, job *maintenance) error {
	c := cron.New()
	if _, err := c.AddFunc(job.cfg.MaintenanceSchedule, func() {
		job.run(context.Background())
	}); err != nil {
		return fmt.Errorf("invalid MAINTENANCE_SCHEDULE %q: %w", job.cfg.MaintenanceSchedule, err)
	}

	m.AddRunningJob(func(ctx context.Context) error {
		job.run(ctx)
		c.Start()
		logger.Infof("Maintenance scheduled (%s)", job.cfg.MaintenanceSchedule)
		<-ctx.Done()
		<-c.Stop().Done()
		return nil
	})
	return nil
}

// run performs one maintenance pass. Failures are logged and do not stop
// the remaining steps.
func (j *maintenance) run(ctx context.Context) {
	if n, err := j.db.DeleteExpiredSignInLinks(ctx); err != nil {
		logger.Errorf("Failed to delete expired sign-in links: %v", err)
	} else if n > 0 {
		logger.Infof("Deleted %d expired sign-in links", n)
	}

	if n, err := j.db.DeleteExpiredRevokedTokens(ctx); err != nil {
		logger.Errorf("Failed to delete expired revoked tokens: %v", err)
	} else if n > 0 {
		logger.Infof("Deleted %d expired revoked tokens", n)
	}

	if j.cfg.EnableAuditLogging && j.cfg.AuditLogRetention > 0 {
		if n, err := j.audit.CleanupOldLogs(ctx, j.cfg.AuditLogRetention); err != nil {
			logger.Errorf("Failed to cleanup old audit logs: %v", err)
		} else if n > 0 {
			logger.Infof("Cleaned up %d old audit logs", n)
		}
	}

	if j.contentCache != nil {
		if n := j.contentCache.Purge(); n > 0 {
			logger.Debugf("Purged %d expired content cache entries", n)
		}
	}

	if n := j.manager.PruneIdle(tabIdleTimeout(j.cfg)); n > 0 {
		logger.Debugf("Pruned %d idle tabs", n)
	}
	j.recorder.SetActiveTabsCount(j.manager.Len())

	if j.gauges != nil {
		j.gauges.UpdateGauges(ctx, j.recorder, j.cfg.CacheTTL)
	}
}

// tabIdleTimeout matches the cookie lifetime, after which a tab id can no
// longer be presented
func tabIdleTimeout(cfg *config.Config) time.Duration {
	if cfg.SessionMaxAge > 0 {
		return time.Duration(cfg.SessionMaxAge) * time.Second
	}
	return 24 * time.Hour
}
