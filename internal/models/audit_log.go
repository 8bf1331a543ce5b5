package models

import (
	"database/sql/driver"
	"time"
)

type EventType string

const (
	EventSignInLinkRequested EventType = "SIGN_IN_LINK_REQUESTED"
	EventSignInSuccess       EventType = "SIGN_IN_SUCCESS"
	EventSignInFailure       EventType = "SIGN_IN_FAILURE"
	EventSignOut             EventType = "SIGN_OUT"

	// Emitted by the admin gate while resolving a tab's session.
	EventForcedSignOut  EventType = "FORCED_SIGN_OUT"
	EventEditModeOn     EventType = "EDIT_MODE_ENABLED"
	EventEditModeOff    EventType = "EDIT_MODE_DISABLED"
	EventAccessDenied   EventType = "ACCESS_DENIED"
	EventAuthLookupFail EventType = "AUTH_LOOKUP_FAILED"

	EventContentCreated   EventType = "CONTENT_CREATED"
	EventContentUpdated   EventType = "CONTENT_UPDATED"
	EventContentDeleted   EventType = "CONTENT_DELETED"
	EventContentReordered EventType = "CONTENT_REORDERED"

	EventAdminAdded        EventType = "ADMIN_ADDED"
	EventAdminRemoved      EventType = "ADMIN_REMOVED"
	EventAdminRoleChanged  EventType = "ADMIN_ROLE_CHANGED"
	EventContactMessageNew EventType = "CONTACT_MESSAGE_RECEIVED"

	EventRateLimitExceeded EventType = "RATE_LIMIT_EXCEEDED"

	EventTypeAuditLogView     EventType = "AUDIT_LOG_VIEWED"
	EventTypeAuditLogExported EventType = "AUDIT_LOG_EXPORTED"
)

type EventSeverity string

const (
	SeverityInfo     EventSeverity = "INFO"
	SeverityWarning  EventSeverity = "WARNING"
	SeverityError    EventSeverity = "ERROR"
	SeverityCritical EventSeverity = "CRITICAL"
)

// ResourceType names what an audit entry is about.
type ResourceType string

const (
	ResourceAdmin          ResourceType = "ADMIN"
	ResourceSession        ResourceType = "SESSION"
	ResourceMagazine       ResourceType = "MAGAZINE"
	ResourceBlogPost       ResourceType = "BLOG_POST"
	ResourceGallerySlide   ResourceType = "GALLERY_SLIDE"
	ResourceAbout          ResourceType = "ABOUT"
	ResourceContactMessage ResourceType = "CONTACT_MESSAGE"
)

// AuditDetails is free-form event context, stored as a JSON column.
type AuditDetails map[string]any

func (a AuditDetails) Value() (driver.Value, error) {
	return mapValue(a)
}

func (a *AuditDetails) Scan(value any) error {
	m, err := scanMap("AuditDetails", value)
	if err != nil {
		return err
	}
	*a = m
	return nil
}

// AuditLog is one immutable entry in the audit trail. Actor fields are
// empty for anonymous visitors.
type AuditLog struct {
	ID        string        `gorm:"primaryKey;type:varchar(36)"     json:"id"`
	EventType EventType     `gorm:"type:varchar(50);index;not null" json:"event_type"`
	EventTime time.Time     `gorm:"index;not null"                  json:"event_time"`
	Severity  EventSeverity `gorm:"type:varchar(20);not null"       json:"severity"`

	ActorEmail string `gorm:"type:varchar(320);index" json:"actor_email"`
	ActorIP    string `gorm:"type:varchar(45);index"  json:"actor_ip"`

	ResourceType ResourceType `gorm:"type:varchar(50);index"  json:"resource_type"`
	ResourceID   string       `gorm:"type:varchar(320);index" json:"resource_id"`
	ResourceName string       `gorm:"type:varchar(255)"       json:"resource_name"`

	Action       string       `gorm:"type:varchar(255);not null" json:"action"`
	Details      AuditDetails `gorm:"type:json"                  json:"details"`
	Success      bool         `gorm:"index;not null"             json:"success"`
	ErrorMessage string       `gorm:"type:text"                  json:"error_message,omitempty"`

	UserAgent     string `gorm:"type:varchar(500)" json:"user_agent,omitempty"`
	RequestPath   string `gorm:"type:varchar(500)" json:"request_path,omitempty"`
	RequestMethod string `gorm:"type:varchar(10)"  json:"request_method,omitempty"`

	CreatedAt time.Time `gorm:"index;not null" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
