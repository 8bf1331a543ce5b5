package handlers

import (
	"errors"
	"net/http"

	"github.com/psychmag/psychmag/internal/adminsession"
	"github.com/psychmag/psychmag/internal/auth"
	"github.com/psychmag/psychmag/internal/core"
	"github.com/psychmag/psychmag/internal/locale"
	"github.com/psychmag/psychmag/internal/logger"
	"github.com/psychmag/psychmag/internal/middleware"
	"github.com/psychmag/psychmag/internal/models"
	"github.com/psychmag/psychmag/internal/services"
	"github.com/psychmag/psychmag/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	provider core.IdentityProvider
	auditor  services.Auditor
	metrics  core.Recorder
	baseURL  string
}

func NewAuthHandler(
	provider core.IdentityProvider,
	auditor services.Auditor,
	metrics core.Recorder,
	baseURL string,
) *AuthHandler {
	return &AuthHandler{
		provider: provider,
		auditor:  auditor,
		metrics:  metrics,
		baseURL:  baseURL,
	}
}

type signInRequest struct {
	Email    string `json:"email"    binding:"required"`
	Redirect string `json:"redirect"`
}

// SignIn requests a passwordless sign-in link.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_email", "invalid_email")
		return
	}
	email := models.NormalizeEmail(req.Email)

	err := h.provider.RequestSignInLink(c.Request.Context(), email, req.Redirect)
	h.metrics.RecordSignInLinkRequested(err == nil)

	entry := services.AuditLogEntry{
		EventType:     models.EventSignInLinkRequested,
		Severity:      models.SeverityInfo,
		ActorEmail:    email,
		ResourceType:  models.ResourceSession,
		Action:        "Sign-in link requested",
		Details:       models.AuditDetails{"provider": h.provider.Name()},
		Success:       err == nil,
		UserAgent:     c.Request.UserAgent(),
		RequestPath:   c.Request.URL.Path,
		RequestMethod: c.Request.Method,
	}
	if err != nil {
		entry.Severity = models.SeverityWarning
		entry.ErrorMessage = err.Error()
	}
	h.auditor.Log(c.Request.Context(), entry)

	switch {
	case err == nil:
		c.JSON(http.StatusAccepted, gin.H{"message": locale.T(c, "sign_in_link_sent")})
	case errors.Is(err, auth.ErrInvalidEmail):
		respondError(c, http.StatusBadRequest, "invalid_email", "invalid_email")
	default:
		logger.Errorf("sign-in link request via %s failed: %v", h.provider.Name(), err)
		respondError(c, http.StatusBadGateway, "server_error", "server_error")
	}
}

// Callback completes a sign-in from the e-mailed link, binds the session to
// the tab and redirects. Identities outside the allowlist get 403.
func (h *AuthHandler) Callback(c *gin.Context) {
	ctx := c.Request.Context()
	st := middleware.GetTabState(c)

	session, err := h.provider.CompleteSignIn(ctx, c.Query("token"))
	h.metrics.RecordSignIn(h.provider.Name(), err == nil)
	if err != nil {
		h.auditor.Log(ctx, services.AuditLogEntry{
			EventType:     models.EventSignInFailure,
			Severity:      models.SeverityWarning,
			ResourceType:  models.ResourceSession,
			Action:        "Sign-in link rejected",
			Success:       false,
			ErrorMessage:  err.Error(),
			UserAgent:     c.Request.UserAgent(),
			RequestPath:   c.Request.URL.Path,
			RequestMethod: c.Request.Method,
		})
		if errors.Is(err, auth.ErrInvalidSignInLink) {
			respondError(c, http.StatusBadRequest, "invalid_sign_in_link", "invalid_sign_in_link")
			return
		}
		respondServiceError(c, err)
		return
	}

	email := models.NormalizeEmail(session.Identity.Email)
	h.auditor.Log(ctx, services.AuditLogEntry{
		EventType:     models.EventSignInSuccess,
		Severity:      models.SeverityInfo,
		ActorEmail:    email,
		ResourceType:  models.ResourceSession,
		ResourceID:    email,
		Action:        "Signed in",
		Details:       models.AuditDetails{"provider": h.provider.Name(), "tab_id": st.ID()},
		Success:       true,
		UserAgent:     c.Request.UserAgent(),
		RequestPath:   c.Request.URL.Path,
		RequestMethod: c.Request.Method,
	})

	if err := middleware.SetAccessToken(c, session.AccessToken); err != nil {
		logger.Errorf("failed to store access token for %s: %v", email, err)
		respondError(c, http.StatusInternalServerError, "server_error", "server_error")
		return
	}

	snap := st.Settle(ctx, session.AccessToken)
	middleware.ReleaseAccessToken(c, st)
	if !snap.IsAdmin() {
		code, messageID := "forbidden", "admin_required"
		if snap.Notice != "" {
			code, messageID = adminsession.NoticeNotAuthorized, snap.Notice
		}
		c.JSON(http.StatusForbidden, gin.H{
			"error":             code,
			"error_description": locale.T(c, messageID),
			"session":           sessionBody(c, snap),
		})
		return
	}

	redirect := c.Query("redirect")
	if redirect == "" || !util.IsRedirectSafe(redirect, h.baseURL) {
		redirect = "/"
	}
	c.Redirect(http.StatusFound, redirect)
}

// SignOut ends the session. Signing out twice is not an error.
func (h *AuthHandler) SignOut(c *gin.Context) {
	ctx := c.Request.Context()
	st := middleware.GetTabState(c)
	token := middleware.GetAccessToken(c)
	email := st.Snapshot().Email
	bound := st.Token()

	snap := st.SignOut(ctx)
	if token != "" && token != bound {
		if err := h.provider.SignOut(ctx, token); err != nil {
			logger.Warningf("provider sign-out failed: %v", err)
		}
	}
	if err := middleware.ClearAccessToken(c); err != nil {
		logger.Warningf("failed to clear access token: %v", err)
	}

	if token != "" || bound != "" {
		h.metrics.RecordSignOut()
		h.auditor.Log(ctx, services.AuditLogEntry{
			EventType:     models.EventSignOut,
			Severity:      models.SeverityInfo,
			ActorEmail:    email,
			ResourceType:  models.ResourceSession,
			ResourceID:    email,
			Action:        "Signed out",
			Success:       true,
			UserAgent:     c.Request.UserAgent(),
			RequestPath:   c.Request.URL.Path,
			RequestMethod: c.Request.Method,
		})
	}

	c.JSON(http.StatusOK, sessionBody(c, snap))
}
