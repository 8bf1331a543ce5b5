package bootstrap

import (
	"net/http"

	"github.com/psychmag/psychmag/internal/adminsession"
	"github.com/psychmag/psychmag/internal/config"
	"github.com/psychmag/psychmag/internal/core"
	"github.com/psychmag/psychmag/internal/handlers"
	"github.com/psychmag/psychmag/internal/locale"
	"github.com/psychmag/psychmag/internal/logger"
	"github.com/psychmag/psychmag/internal/metrics"
	"github.com/psychmag/psychmag/internal/middleware"
	"github.com/psychmag/psychmag/internal/services"
	"github.com/psychmag/psychmag/internal/util"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const sessionCookieName = "psychmag_session"

// routerDeps carries what the router wires into middleware and routes
type routerDeps struct {
	db           handlers.HealthChecker
	contentCache handlers.HealthChecker
	handlers     handlerSet
	manager      *adminsession.Manager
	bundle       *locale.Bundle
	auditor      services.Auditor
	recorder     core.Recorder
	rateLimiters rateLimitMiddlewares
}

// setupRouter configures the Gin router with all routes and middleware
func setupRouter(cfg *config.Config, deps routerDeps) *gin.Engine {
	setupGinMode(cfg)
	r := gin.New()

	r.Use(metrics.HTTPMetricsMiddleware(deps.recorder))
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(util.IPMiddleware())

	// Registered ahead of the session middleware so health checks do not open tabs
	r.GET("/health", handlers.HealthCheck(deps.db, deps.contentCache))
	setupMetricsEndpoint(r, cfg)

	setupSessionMiddleware(r, cfg)
	r.Use(deps.bundle.Middleware())
	r.Use(middleware.TabSession(deps.manager))
	r.Use(middleware.CSRFMiddleware())

	setupAllRoutes(r, deps.handlers, deps.auditor, deps.rateLimiters)

	logServerStartup(cfg)
	return r
}

// setupSessionMiddleware configures the cookie session that carries the
// tab id, the access token and the CSRF token
func setupSessionMiddleware(r *gin.Engine, cfg *config.Config) {
	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.SessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionCookieName, sessionStore))
}

// setupMetricsEndpoint configures the Prometheus metrics endpoint
func setupMetricsEndpoint(r *gin.Engine, cfg *config.Config) {
	switch {
	case !cfg.MetricsEnabled:
		logger.Infof("Prometheus metrics disabled")
	case cfg.MetricsToken != "":
		logger.Infof("Prometheus metrics enabled at /metrics with Bearer token authentication")
		r.GET(
			"/metrics",
			middleware.MetricsAuthMiddleware(cfg.MetricsToken),
			gin.WrapH(promhttp.Handler()),
		)
	default:
		logger.Infof("Prometheus metrics enabled at /metrics (no authentication)")
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

// setupAllRoutes configures all application routes
func setupAllRoutes(
	r *gin.Engine,
	h handlerSet,
	auditor services.Auditor,
	rateLimiters rateLimitMiddlewares,
) {
	// Sign-in flow
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/sign-in", rateLimiters.signIn, h.auth.SignIn)
		authGroup.GET("/callback", h.auth.Callback)
		authGroup.POST("/sign-out", h.auth.SignOut)
	}

	api := r.Group("/api")

	// Per-tab session state
	session := api.Group("/session")
	{
		session.GET("", h.session.Current)
		session.POST("/edit-mode", h.session.SetEditMode)
		session.GET("/stream", h.session.Stream)
	}

	// Public site content
	{
		api.GET("/magazines", h.public.ListMagazines)
		api.GET("/magazines/:id", h.public.GetMagazine)
		api.GET("/blog", h.public.ListBlogPosts)
		api.GET("/blog/latest", h.public.LatestBlogPosts)
		api.GET("/blog/:slug", h.public.GetBlogPost)
		api.GET("/gallery", h.public.ListGallery)
		api.GET("/about", h.public.GetAbout)
		api.POST("/contact", rateLimiters.contact, h.public.SubmitContact)
	}

	// Content management (admin or super admin)
	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdmin(auditor))
	{
		admin.GET("/magazines", h.content.ListMagazines)
		admin.GET("/magazines/:id", h.content.GetMagazine)
		admin.POST("/magazines", h.content.CreateMagazine)
		admin.PUT("/magazines/:id", h.content.UpdateMagazine)
		admin.POST("/magazines/:id/publish", h.content.PublishMagazine)
		admin.DELETE("/magazines/:id", h.content.DeleteMagazine)

		admin.GET("/blog", h.content.ListBlogPosts)
		admin.GET("/blog/:id", h.content.GetBlogPost)
		admin.POST("/blog", h.content.CreateBlogPost)
		admin.PUT("/blog/:id", h.content.UpdateBlogPost)
		admin.POST("/blog/:id/publish", h.content.PublishBlogPost)
		admin.DELETE("/blog/:id", h.content.DeleteBlogPost)

		admin.GET("/gallery", h.content.ListGallery)
		admin.POST("/gallery", h.content.CreateGallerySlide)
		admin.PUT("/gallery/:id", h.content.UpdateGallerySlide)
		admin.POST("/gallery/:id/active", h.content.SetGallerySlideActive)
		admin.POST("/gallery/reorder", h.content.ReorderGallery)
		admin.DELETE("/gallery/:id", h.content.DeleteGallerySlide)

		admin.PUT("/about", h.content.UpdateAbout)

		admin.GET("/contact", h.content.ListContactMessages)
		admin.DELETE("/contact/:id", h.content.DeleteContactMessage)

		admin.GET("/audit-logs", h.audit.ListAuditLogs)
		admin.GET("/audit-logs/stats", h.audit.GetAuditLogStats)
		admin.GET("/audit-logs/export", h.audit.ExportAuditLogs)
	}

	// Allowlist management (super admin only)
	superAdmin := admin.Group("/admins")
	superAdmin.Use(middleware.RequireSuperAdmin())
	{
		superAdmin.GET("", h.admins.List)
		superAdmin.POST("", h.admins.Add)
		superAdmin.PATCH("/:email", h.admins.Update)
		superAdmin.DELETE("/:email", h.admins.Remove)
	}
}

// setupGinMode sets Gin mode based on environment configuration
func setupGinMode(cfg *config.Config) {
	mode := ginModeMap[cfg.IsProduction]
	gin.SetMode(mode)
	logger.Infof("Gin mode: %s", ginModeLogMessage[cfg.IsProduction])
}

var ginModeMap = map[bool]string{
	true:  gin.ReleaseMode,
	false: gin.DebugMode,
}

var ginModeLogMessage = map[bool]string{
	true:  "Release (production)",
	false: "Debug (development)",
}

// logServerStartup logs server startup information
func logServerStartup(cfg *config.Config) {
	logger.Infof("Authentication mode: %s", cfg.AuthMode)
	logger.Infof("psychmag API starting on %s", cfg.ServerAddr)
	logger.Infof("Sign-in callback: %s/auth/callback", cfg.BaseURL)
	if cfg.BootstrapSuperAdmin != "" {
		logger.Infof("Bootstrap super admin: %s", cfg.BootstrapSuperAdmin)
	}
}
