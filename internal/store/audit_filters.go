package store

import (
	"time"

	"github.com/psychmag/psychmag/internal/models"
)

// AuditLogFilters contains filter criteria for querying audit logs
type AuditLogFilters struct {
	EventType    models.EventType     `json:"event_type,omitempty"`
	ActorEmail   string               `json:"actor_email,omitempty"`
	ResourceType models.ResourceType  `json:"resource_type,omitempty"`
	ResourceID   string               `json:"resource_id,omitempty"`
	Severity     models.EventSeverity `json:"severity,omitempty"`
	Success      *bool                `json:"success,omitempty"`
	StartTime    time.Time            `json:"start_time,omitzero"`
	EndTime      time.Time            `json:"end_time,omitzero"`
	Search       string               `json:"search,omitempty"` // Search in action, resource_name, actor_email
}

// AuditLogStats contains statistics about audit logs
type AuditLogStats struct {
	TotalEvents  int64                      `json:"total_events"`
	EventsByType map[models.EventType]int64 `json:"events_by_type"`
	SuccessCount int64                      `json:"success_count"`
	FailureCount int64                      `json:"failure_count"`
}
