package middleware

import (
	"net/http"

	"github.com/psychmag/psychmag/internal/adminsession"
	"github.com/psychmag/psychmag/internal/models"
	"github.com/psychmag/psychmag/internal/services"

	"github.com/gin-gonic/gin"
)

// RequireAdmin re-authorizes every request against the allowlist before any
// admin handler runs. It must be used after TabSession.
func RequireAdmin(auditor services.Auditor) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := GetTabState(c)
		token := GetAccessToken(c)
		if st == nil || token == "" {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "sign_in_required")
			return
		}

		snap := st.Settle(c.Request.Context(), token)
		ReleaseAccessToken(c, st)

		admin := st.Admin()
		if !snap.IsAdmin() || admin == nil {
			denyAdmin(c, auditor, snap)
			return
		}

		c.Set(models.GinAdminKey, admin)
		c.Request = c.Request.WithContext(models.SetAdminContext(c.Request.Context(), admin))
		c.Next()
	}
}

// RequireSuperAdmin must be used after RequireAdmin.
func RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		admin := models.GetAdminFromContext(c)
		if admin == nil {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "sign_in_required")
			return
		}
		if !admin.IsSuperAdmin {
			abortWithError(c, http.StatusForbidden, "forbidden", "super_admin_required")
			return
		}
		c.Next()
	}
}

func denyAdmin(c *gin.Context, auditor services.Auditor, snap adminsession.Snapshot) {
	if auditor != nil && snap.Phase == adminsession.PhaseUnauthorized {
		auditor.Log(c.Request.Context(), services.AuditLogEntry{
			EventType:     models.EventAccessDenied,
			Severity:      models.SeverityWarning,
			ActorEmail:    snap.Email,
			ResourceType:  models.ResourceSession,
			Action:        "Admin request denied",
			Success:       false,
			UserAgent:     c.Request.UserAgent(),
			RequestPath:   c.Request.URL.Path,
			RequestMethod: c.Request.Method,
		})
	}

	switch {
	case snap.Notice == adminsession.NoticeNotAuthorized:
		abortWithError(c, http.StatusForbidden, "not_authorized", adminsession.NoticeNotAuthorized)
	case snap.Phase == adminsession.PhaseUnauthorized:
		abortWithError(c, http.StatusForbidden, "forbidden", "admin_required")
	default:
		abortWithError(c, http.StatusUnauthorized, "unauthorized", "sign_in_required")
	}
}
