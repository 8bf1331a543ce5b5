package util

import (
	"context"

	"github.com/gin-gonic/gin"
)

// RequestInfo is the slice of an HTTP request that audit entries record.
type RequestInfo struct {
	IP        string
	UserAgent string
	Path      string
	Method    string
}

type requestInfoKey struct{}

// IPMiddleware attaches the caller's RequestInfo to the request context so
// code that only sees a context.Context can still attribute its audit entries.
func IPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		info := RequestInfo{
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Path:      c.Request.URL.Path,
			Method:    c.Request.Method,
		}
		c.Request = c.Request.WithContext(WithRequestInfo(c.Request.Context(), info))
		c.Next()
	}
}

func WithRequestInfo(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, info)
}

// RequestInfoFrom returns the RequestInfo stored on ctx, or the zero value.
func RequestInfoFrom(ctx context.Context) RequestInfo {
	if ctx == nil {
		return RequestInfo{}
	}
	info, _ := ctx.Value(requestInfoKey{}).(RequestInfo)
	return info
}

// SetIPContext returns ctx with its client IP replaced by ip.
func SetIPContext(ctx context.Context, ip string) context.Context {
	if ip == "" {
		return ctx
	}
	info := RequestInfoFrom(ctx)
	info.IP = ip
	return WithRequestInfo(ctx, info)
}
