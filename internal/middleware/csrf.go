package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/psychmag/psychmag/internal/logger"
	"github.com/psychmag/psychmag/internal/util"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	csrfTokenKey    = "csrf_token"
	csrfHeaderField = "X-CSRF-Token"
	csrfTokenLength = 64
)

// CSRFMiddleware rejects state-changing requests that do not echo the
// session's CSRF token in the X-CSRF-Token header.
func CSRFMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		token, _ := session.Get(csrfTokenKey).(string)
		if token == "" {
			var err error
			token, err = util.CryptoRandomString(csrfTokenLength)
			if err != nil {
				logger.Errorf("failed to generate CSRF token: %v", err)
				abortWithError(c, http.StatusInternalServerError, "server_error", "server_error")
				return
			}
			session.Set(csrfTokenKey, token)
			if err := session.Save(); err != nil {
				logger.Errorf("failed to save CSRF token: %v", err)
				abortWithError(c, http.StatusInternalServerError, "server_error", "server_error")
				return
			}
		}

		c.Set(csrfTokenKey, token)

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
		default:
			submitted := c.GetHeader(csrfHeaderField)
			if submitted == "" || subtle.ConstantTimeCompare([]byte(submitted), []byte(token)) != 1 {
				abortWithError(c, http.StatusForbidden, "csrf_failed", "csrf_failed")
				return
			}
		}

		c.Next()
	}
}

// GetCSRFToken retrieves the CSRF token from the context
func GetCSRFToken(c *gin.Context) string {
	if token, exists := c.Get(csrfTokenKey); exists {
		if tokenStr, ok := token.(string); ok {
			return tokenStr
		}
	}
	return ""
}
