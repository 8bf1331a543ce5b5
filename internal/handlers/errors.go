package handlers

import (
	"errors"
	"net/http"

	"github.com/psychmag/psychmag/internal/auth"
	"github.com/psychmag/psychmag/internal/locale"
	"github.com/psychmag/psychmag/internal/logger"
	"github.com/psychmag/psychmag/internal/services"

	"github.com/gin-gonic/gin"
)

// respondError writes {"error": code, "error_description": message} with
// the message localized for the request.
func respondError(c *gin.Context, status int, code, messageID string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":             code,
		"error_description": locale.T(c, messageID),
	})
}

type errorMapping struct {
	target    error
	status    int
	code      string
	messageID string
}

var serviceErrors = []errorMapping{
	{services.ErrNotFound, http.StatusNotFound, "not_found", "not_found"},
	{services.ErrInvalidEmail, http.StatusBadRequest, "invalid_email", "invalid_email"},
	{auth.ErrInvalidEmail, http.StatusBadRequest, "invalid_email", "invalid_email"},
	{services.ErrInvalidInput, http.StatusBadRequest, "invalid_input", "invalid_input"},
	{services.ErrSlugConflict, http.StatusConflict, "slug_conflict", "slug_conflict"},
	{services.ErrAdminExists, http.StatusConflict, "admin_exists", "admin_exists"},
	{services.ErrLastSuperAdmin, http.StatusConflict, "last_super_admin", "last_super_admin"},
	{services.ErrSelfModification, http.StatusForbidden, "self_modification", "self_modification"},
	{auth.ErrInvalidSignInLink, http.StatusBadRequest, "invalid_sign_in_link", "invalid_sign_in_link"},
}

// respondServiceError maps a service error to its HTTP status. Unknown
// errors are logged and reported as 500 without detail.
func respondServiceError(c *gin.Context, err error) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.target) {
			respondError(c, m.status, m.code, m.messageID)
			return
		}
	}
	logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	respondError(c, http.StatusInternalServerError, "server_error", "server_error")
}
