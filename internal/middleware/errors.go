package middleware

import (
	"github.com/psychmag/psychmag/internal/locale"

	"github.com/gin-gonic/gin"
)

// abortWithError writes the JSON error body used across the API.
func abortWithError(c *gin.Context, status int, code, messageID string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":             code,
		"error_description": locale.T(c, messageID),
	})
}
