package models

import (
	"context"

	"github.com/gin-gonic/gin"
)

type contextKey int

const adminContextKey contextKey = 0

// GinAdminKey is the gin context key under which RequireAdmin stores the *Admin.
const GinAdminKey = "admin"

// SetAdminContext returns a copy of ctx carrying the authorized admin.
func SetAdminContext(ctx context.Context, admin *Admin) context.Context {
	if admin == nil {
		return ctx
	}
	return context.WithValue(ctx, adminContextKey, admin)
}

// GetAdminFromContext returns the admin placed in ctx by SetAdminContext or
// by the admin middleware, or nil.
func GetAdminFromContext(ctx context.Context) *Admin {
	if ctx == nil {
		return nil
	}
	if ginCtx, ok := ctx.(*gin.Context); ok {
		if val, exists := ginCtx.Get(GinAdminKey); exists {
			if admin, ok := val.(*Admin); ok {
				return admin
			}
		}
		if ginCtx.Request != nil {
			return GetAdminFromContext(ginCtx.Request.Context())
		}
		return nil
	}
	if admin, ok := ctx.Value(adminContextKey).(*Admin); ok {
		return admin
	}
	return nil
}

// GetActorEmailFromContext returns the e-mail of the admin acting in ctx,
// or an empty string.
func GetActorEmailFromContext(ctx context.Context) string {
	if admin := GetAdminFromContext(ctx); admin != nil {
		return admin.Email
	}
	return ""
}
