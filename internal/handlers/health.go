package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthChecker is implemented by the store and the content cache.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthCheck reports 503 when the database is unreachable. The content
// cache is reported but does not fail the check, since reads fall back to
// the database.
func HealthCheck(db HealthChecker, cache HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		body := gin.H{"status": "healthy", "database": "connected"}
		status := http.StatusOK

		if err := db.Health(ctx); err != nil {
			body["status"] = "unhealthy"
			body["database"] = "disconnected"
			status = http.StatusServiceUnavailable
		}
		if cache != nil {
			body["cache"] = "connected"
			if err := cache.Health(ctx); err != nil {
				body["cache"] = "disconnected"
			}
		}
		c.JSON(status, body)
	}
}
