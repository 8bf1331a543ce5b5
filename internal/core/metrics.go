package core

import "time"

// Recorder defines the interface for recording application metrics.
// Implementations include Metrics (Prometheus-based) and NoopMetrics (no-op).
type Recorder interface {
	// Authentication
	RecordSignInLinkRequested(success bool)
	RecordSignIn(provider string, success bool)
	RecordSignOut()
	RecordExternalAPICall(provider string, duration time.Duration)

	// Authorization
	RecordAuthorization(state string, duration time.Duration)
	RecordForcedSignOut()
	RecordStaleResolution()

	// Content management
	RecordContentMutation(resource, action string, success bool)
	RecordContactMessage(success bool)

	// Gauge Setters (for periodic updates)
	SetAdminsCount(total, superAdmins int)
	SetActiveTabsCount(count int)

	// Database Operations
	RecordDatabaseQueryError(operation string)
}
