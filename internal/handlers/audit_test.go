package handlers

import (
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/psychmag/psychmag/internal/config"
	"github.com/psychmag/psychmag/internal/models"
	"github.com/psychmag/psychmag/internal/services"
	"github.com/psychmag/psychmag/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuditRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s, err := store.New("sqlite", ":memory:", &config.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	audit := services.NewAuditService(s, true, 10)
	t.Cleanup(func() { _ = audit.Shutdown(context.Background()) })

	ctx := context.Background()
	require.NoError(t, audit.LogSync(ctx, services.AuditLogEntry{
		EventType:    models.EventContentCreated,
		ActorEmail:   "editor@example.com",
		ResourceType: models.ResourceBlogPost,
		ResourceID:   "post-1",
		Action:       "create blog post",
		Success:      true,
	}))
	require.NoError(t, audit.LogSync(ctx, services.AuditLogEntry{
		EventType:    models.EventAccessDenied,
		Severity:     models.SeverityWarning,
		ActorEmail:   "ghost@example.com",
		Action:       "edit mode denied",
		ErrorMessage: "not on allowlist",
	}))

	h := NewAuditHandler(audit)
	r := gin.New()
	r.GET("/audit-logs", h.ListAuditLogs)
	r.GET("/audit-logs/stats", h.GetAuditLogStats)
	r.GET("/audit-logs/export", h.ExportAuditLogs)
	return r
}

func TestAuditHandler_ListFiltersBySuccess(t *testing.T) {
	r := newAuditRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/audit-logs?success=false", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	logs, ok := body["logs"].([]any)
	require.True(t, ok)
	require.Len(t, logs, 1)
	assert.Equal(t, "ghost@example.com", logs[0].(map[string]any)["actor_email"])
}

func TestAuditHandler_Stats(t *testing.T) {
	r := newAuditRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/audit-logs/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode(t, w), "stats")
}

func TestAuditHandler_ExportCSV(t *testing.T) {
	r := newAuditRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"/audit-logs/export?actor_email=Editor@Example.com", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "psychmag_audit_")

	rows, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Event Time", rows[0][0])
	assert.Equal(t, string(models.EventContentCreated), rows[1][1])
	assert.Equal(t, "editor@example.com", rows[1][3])
	assert.Equal(t, "post-1", rows[1][6])
	assert.Equal(t, "true", rows[1][8])
}
