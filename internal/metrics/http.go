package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/psychmag/psychmag/internal/core"

	"github.com/gin-gonic/gin"
)

// unrecordedPaths are health checks and scrapes that would drown out site traffic.
var unrecordedPaths = map[string]bool{
	"/metrics": true,
	"/health":  true,
}

// HTTPMetricsMiddleware records request counts and latencies per route.
// It is a no-op unless m is the Prometheus recorder.
func HTTPMetricsMiddleware(m core.Recorder) gin.HandlerFunc {
	metrics, ok := m.(*Metrics)
	if !ok {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		if unrecordedPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		c.Next()

		method := c.Request.Method
		route := routeLabel(c.FullPath())
		metrics.HTTPRequestsTotal.
			WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).
			Inc()

		// Session streams stay open for the life of a tab.
		if !isStream(route) {
			metrics.HTTPRequestDuration.
				WithLabelValues(method, route).
				Observe(time.Since(start).Seconds())
		}
	}
}

// routeLabel returns the route pattern (e.g. "/api/blog/:slug"), or
// "unknown" for unmatched requests so raw paths never become label values.
func routeLabel(fullPath string) string {
	if fullPath == "" {
		return "unknown"
	}
	return fullPath
}

func isStream(route string) bool {
	return strings.HasSuffix(route, "/stream")
}
