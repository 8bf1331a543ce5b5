package bootstrap

import (
	"encoding/json"

	"github.com/psychmag/psychmag/internal/config"
	"github.com/psychmag/psychmag/internal/core"
	"github.com/psychmag/psychmag/internal/services"
	"github.com/psychmag/psychmag/internal/store"
)

// serviceSet holds the business services
type serviceSet struct {
	audit     *services.AuditService
	admins    *services.AdminService
	magazines *services.MagazineService
	blog      *services.BlogService
	gallery   *services.GalleryService
	about     *services.AboutService
	contact   *services.ContactService
}

// initializeServices creates all business services
func initializeServices(
	cfg *config.Config,
	db *store.Store,
	contentCache core.Cache[json.RawMessage],
	recorder core.Recorder,
) serviceSet {
	// Audit service (required by other services)
	auditService := services.NewAuditService(db, cfg.EnableAuditLogging, cfg.AuditLogBufferSize)

	cache := services.NewContentCache(contentCache, cfg.CacheTTL)
	media := services.MediaURLsFromConfig(cfg)

	return serviceSet{
		audit:     auditService,
		admins:    services.NewAdminService(db, auditService, recorder),
		magazines: services.NewMagazineService(db, cache, media, auditService, recorder),
		blog:      services.NewBlogService(db, cache, media, auditService, recorder),
		gallery:   services.NewGalleryService(db, cache, media, auditService, recorder),
		about:     services.NewAboutService(db, cache, auditService, recorder),
		contact: services.NewContactService(
			db,
			cfg.ContactMessageMaxLength,
			auditService,
			recorder,
		),
	}
}
