package bootstrap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/psychmag/psychmag/internal/adminsession"
	"github.com/psychmag/psychmag/internal/auth"
	"github.com/psychmag/psychmag/internal/config"
	"github.com/psychmag/psychmag/internal/core"
	"github.com/psychmag/psychmag/internal/locale"
	"github.com/psychmag/psychmag/internal/metrics"
	"github.com/psychmag/psychmag/internal/store"

	"github.com/appleboy/graceful"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Application is the wired site: storage, the admin gate with its per-tab
// session manager, and the HTTP surface in front of them.
type Application struct {
	Config *config.Config

	// LinkSender delivers local sign-in links. Nil logs them.
	LinkSender auth.LinkSender

	DB                   *store.Store
	MetricsRecorder      core.Recorder
	MetricsCache         core.Cache[int64]
	ContentCache         core.Cache[json.RawMessage]
	RateLimitRedisClient *redis.Client
	Locales              *locale.Bundle

	IdentityProvider core.IdentityProvider
	Sessions         *adminsession.Manager
	Services         serviceSet

	HandlerSet handlerSet
	Router     *gin.Engine
	Server     *http.Server
}

// Run builds the application from cfg and serves until a shutdown signal.
func Run(cfg *config.Config) error {
	if err := CheckConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{Config: cfg}
	if err := app.Build(context.Background()); err != nil {
		return err
	}
	return app.serve()
}

// Build wires every component without starting any background work.
func (app *Application) Build(ctx context.Context) error {
	if err := app.initializeInfrastructure(ctx); err != nil {
		return err
	}
	if err := app.initializeBusinessLayer(); err != nil {
		return err
	}
	return app.initializeHTTPLayer()
}

func (app *Application) initializeInfrastructure(ctx context.Context) error {
	var err error

	app.DB, err = initializeDatabase(ctx, app.Config)
	if err != nil {
		return err
	}

	app.MetricsRecorder = initializeMetrics(app.Config)
	app.MetricsCache, err = initializeMetricsCache(ctx, app.Config)
	if err != nil {
		return err
	}
	app.ContentCache, err = initializeContentCache(ctx, app.Config)
	if err != nil {
		return err
	}

	app.Locales, err = locale.NewBundle(app.Config.DefaultLocale, app.Config.SupportedLocales)
	if err != nil {
		return err
	}

	app.RateLimitRedisClient, err = initializeRateLimitRedisClient(app.Config)
	return err
}

// initializeBusinessLayer builds content services and the authorization
// chain: identity provider, allowlist gate, resolver and tab manager.
func (app *Application) initializeBusinessLayer() error {
	app.Services = initializeServices(app.Config, app.DB, app.ContentCache, app.MetricsRecorder)

	provider, err := initializeIdentityProvider(
		app.Config,
		app.DB,
		app.LinkSender,
		app.MetricsRecorder,
	)
	if err != nil {
		return err
	}
	app.IdentityProvider = provider

	gate := adminsession.NewGate(app.DB, app.Config.AuthLookupTimeout, app.MetricsRecorder)
	resolver := adminsession.NewResolver(
		provider,
		gate,
		app.Services.audit,
		app.MetricsRecorder,
		app.Config.AuthLookupTimeout,
	)
	app.Sessions = adminsession.NewManager(resolver, app.MetricsRecorder)
	return nil
}

func (app *Application) initializeHTTPLayer() error {
	rateLimiters, err := setupRateLimiting(
		app.Config,
		app.Services.audit,
		app.RateLimitRedisClient,
	)
	if err != nil {
		return err
	}

	app.HandlerSet = initializeHandlers(
		app.Config,
		app.Services,
		app.IdentityProvider,
		app.MetricsRecorder,
	)

	app.Router = setupRouter(app.Config, routerDeps{
		db:           app.DB,
		contentCache: app.ContentCache,
		handlers:     app.HandlerSet,
		manager:      app.Sessions,
		bundle:       app.Locales,
		auditor:      app.Services.audit,
		recorder:     app.MetricsRecorder,
		rateLimiters: rateLimiters,
	})

	app.Server = createHTTPServer(app.Config, app.Router)
	return nil
}

// serve registers the server, the tab manager and maintenance with a
// graceful manager and blocks until all of them have stopped.
func (app *Application) serve() error {
	m := graceful.NewManager()

	job := &maintenance{
		cfg:      app.Config,
		db:       app.DB,
		audit:    app.Services.audit,
		manager:  app.Sessions,
		recorder: app.MetricsRecorder,
	}
	if p, ok := app.ContentCache.(purger); ok {
		job.contentCache = p
	}
	if app.MetricsCache != nil {
		job.gauges = metrics.NewCacheWrapper(app.DB, app.MetricsCache)
	}
	if err := addMaintenanceJob(m, job); err != nil {
		return err
	}

	addSessionManagerJob(m, app.Sessions)
	addServerRunningJob(m, app.Server)
	addServerShutdownJob(m, app.Server)
	addRedisClientShutdownJob(m, app.RateLimitRedisClient)
	addAuditServiceShutdownJob(m, app.Services.audit)
	addCacheShutdownJob(m, "Content", app.ContentCache)
	addCacheShutdownJob(m, "Metrics", app.MetricsCache)

	<-m.Done()
	return nil
}
