package handlers

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/psychmag/psychmag/internal/logger"
	"github.com/psychmag/psychmag/internal/models"
	"github.com/psychmag/psychmag/internal/services"
	"github.com/psychmag/psychmag/internal/store"

	"github.com/gin-gonic/gin"
)

const (
	maxExportRecords = 10000
	defaultStatsSpan = 30 * 24 * time.Hour
)

type auditReader interface {
	services.Auditor
	GetAuditLogs(
		ctx context.Context,
		params store.PaginationParams,
		filters store.AuditLogFilters,
	) ([]models.AuditLog, store.PaginationResult, error)
	GetAuditLogStats(ctx context.Context, startTime, endTime time.Time) (store.AuditLogStats, error)
}

// AuditHandler serves the audit trail to signed-in admins. Reading it is
// itself audited.
type AuditHandler struct {
	audit auditReader
}

func NewAuditHandler(audit auditReader) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// auditColumns drives the CSV export.
var auditColumns = []struct {
	header string
	value  func(l *models.AuditLog) string
}{
	{"Event Time", func(l *models.AuditLog) string { return l.EventTime.Format(time.RFC3339) }},
	{"Event Type", func(l *models.AuditLog) string { return string(l.EventType) }},
	{"Severity", func(l *models.AuditLog) string { return string(l.Severity) }},
	{"Actor Email", func(l *models.AuditLog) string { return l.ActorEmail }},
	{"Actor IP", func(l *models.AuditLog) string { return l.ActorIP }},
	{"Resource Type", func(l *models.AuditLog) string { return string(l.ResourceType) }},
	{"Resource ID", func(l *models.AuditLog) string { return l.ResourceID }},
	{"Action", func(l *models.AuditLog) string { return l.Action }},
	{"Success", func(l *models.AuditLog) string { return strconv.FormatBool(l.Success) }},
	{"Error Message", func(l *models.AuditLog) string { return l.ErrorMessage }},
}

// queryTime reads an RFC 3339 timestamp; anything else is treated as absent.
func queryTime(c *gin.Context, key string) time.Time {
	t, err := time.Parse(time.RFC3339, c.Query(key))
	if err != nil {
		return time.Time{}
	}
	return t
}

func auditFilters(c *gin.Context) store.AuditLogFilters {
	f := store.AuditLogFilters{
		EventType:    models.EventType(c.Query("event_type")),
		ActorEmail:   models.NormalizeEmail(c.Query("actor_email")),
		ResourceType: models.ResourceType(c.Query("resource_type")),
		ResourceID:   c.Query("resource_id"),
		Severity:     models.EventSeverity(c.Query("severity")),
		Search:       c.Query("search"),
		StartTime:    queryTime(c, "start_time"),
		EndTime:      queryTime(c, "end_time"),
	}
	if raw, ok := c.GetQuery("success"); ok {
		if success, err := strconv.ParseBool(raw); err == nil {
			f.Success = &success
		}
	}
	return f
}

// ListAuditLogs handles GET /api/admin/audit-logs.
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	params := store.NewPaginationParams(page, pageSize, c.Query("search"))
	filters := auditFilters(c)

	ctx := c.Request.Context()
	logs, pagination, err := h.audit.GetAuditLogs(ctx, params, filters)
	if err != nil {
		logger.Errorf("Listing audit logs: %v", err)
		respondError(c, http.StatusInternalServerError, "server_error", "server_error")
		return
	}

	h.audit.Log(ctx, services.AuditLogEntry{
		EventType: models.EventTypeAuditLogView,
		Action:    "view audit logs",
		Details:   models.AuditDetails{"page": params.Page, "filters": filters},
		Success:   true,
	})

	c.JSON(http.StatusOK, gin.H{"logs": logs, "pagination": pagination})
}

// GetAuditLogStats handles GET /api/admin/audit-logs/stats. Without a
// range it covers the last 30 days.
func (h *AuditHandler) GetAuditLogStats(c *gin.Context) {
	start, end := queryTime(c, "start_time"), queryTime(c, "end_time")
	if start.IsZero() && end.IsZero() {
		end = time.Now()
		start = end.Add(-defaultStatsSpan)
	}

	stats, err := h.audit.GetAuditLogStats(c.Request.Context(), start, end)
	if err != nil {
		logger.Errorf("Computing audit log stats: %v", err)
		respondError(c, http.StatusInternalServerError, "server_error", "server_error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats, "start_time": start, "end_time": end})
}

// ExportAuditLogs handles GET /api/admin/audit-logs/export, streaming up
// to maxExportRecords matching entries as CSV.
func (h *AuditHandler) ExportAuditLogs(c *gin.Context) {
	filters := auditFilters(c)
	ctx := c.Request.Context()

	logs, _, err := h.audit.GetAuditLogs(ctx,
		store.PaginationParams{Page: 1, PageSize: maxExportRecords}, filters)
	if err != nil {
		logger.Errorf("Exporting audit logs: %v", err)
		respondError(c, http.StatusInternalServerError, "server_error", "server_error")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(
		"attachment; filename=psychmag_audit_%s.csv", time.Now().Format("20060102")))

	w := csv.NewWriter(c.Writer)
	row := make([]string, len(auditColumns))
	for i, col := range auditColumns {
		row[i] = col.header
	}
	_ = w.Write(row)
	for i := range logs {
		for j, col := range auditColumns {
			row[j] = col.value(&logs[i])
		}
		_ = w.Write(row)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		logger.Warningf("Audit export interrupted: %v", err)
		return
	}

	h.audit.Log(ctx, services.AuditLogEntry{
		EventType: models.EventTypeAuditLogExported,
		Action:    "export audit logs",
		Details:   models.AuditDetails{"records": len(logs), "filters": filters},
		Success:   true,
	})
}
