package bootstrap

import (
	"github.com/psychmag/psychmag/internal/config"
	"github.com/psychmag/psychmag/internal/core"
	"github.com/psychmag/psychmag/internal/handlers"
)

// handlerSet holds all HTTP handlers
type handlerSet struct {
	auth    *handlers.AuthHandler
	session *handlers.SessionHandler
	public  *handlers.PublicHandler
	content *handlers.ContentHandler
	admins  *handlers.AdminsHandler
	audit   *handlers.AuditHandler
}

// initializeHandlers creates all HTTP handlers
func initializeHandlers(
	cfg *config.Config,
	svc serviceSet,
	provider core.IdentityProvider,
	recorder core.Recorder,
) handlerSet {
	return handlerSet{
		auth:    handlers.NewAuthHandler(provider, svc.audit, recorder, cfg.BaseURL),
		session: handlers.NewSessionHandler(svc.audit),
		public: handlers.NewPublicHandler(
			svc.magazines,
			svc.blog,
			svc.gallery,
			svc.about,
			svc.contact,
		),
		content: handlers.NewContentHandler(
			svc.magazines,
			svc.blog,
			svc.gallery,
			svc.about,
			svc.contact,
		),
		admins: handlers.NewAdminsHandler(svc.admins),
		audit:  handlers.NewAuditHandler(svc.audit),
	}
}
