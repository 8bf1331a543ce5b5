package services

import (
	"context"

	"github.com/psychmag/psychmag/internal/core"
	"github.com/psychmag/psychmag/internal/models"
)

// Mutation actions used in metrics labels
const (
	actionCreate  = "create"
	actionUpdate  = "update"
	actionDelete  = "delete"
	actionReorder = "reorder"
)

var actionEvents = map[string]models.EventType{
	actionCreate:  models.EventContentCreated,
	actionUpdate:  models.EventContentUpdated,
	actionDelete:  models.EventContentDeleted,
	actionReorder: models.EventContentReordered,
}

// mutationRecorder reports content writes to the audit log and metrics.
type mutationRecorder struct {
	auditor Auditor
	metrics core.Recorder
}

func (r mutationRecorder) record(
	ctx context.Context,
	resource models.ResourceType,
	action, id, name string,
	err error,
) {
	if r.metrics != nil {
		r.metrics.RecordContentMutation(string(resource), action, err == nil)
	}
	if r.auditor == nil {
		return
	}

	entry := AuditLogEntry{
		EventType:    actionEvents[action],
		Severity:     models.SeverityInfo,
		ResourceType: resource,
		ResourceID:   id,
		ResourceName: name,
		Action:       action + " " + string(resource),
		Success:      err == nil,
	}
	if err != nil {
		entry.Severity = models.SeverityWarning
		entry.ErrorMessage = err.Error()
	}
	r.auditor.Log(ctx, entry)
}

// recordEvent reports a non-content event, such as an allowlist change.
func (r mutationRecorder) recordEvent(ctx context.Context, entry AuditLogEntry) {
	if r.auditor != nil {
		r.auditor.Log(ctx, entry)
	}
}
