package metrics

import (
	"time"

	"github.com/psychmag/psychmag/internal/core"
)

// NoopMetrics discards every measurement. It is used when metrics are disabled.
type NoopMetrics struct{}

var _ core.Recorder = (*NoopMetrics)(nil)

func NewNoopMetrics() core.Recorder {
	return &NoopMetrics{}
}

func (n *NoopMetrics) RecordSignInLinkRequested(success bool)                        {}
func (n *NoopMetrics) RecordSignIn(provider string, success bool)                    {}
func (n *NoopMetrics) RecordSignOut()                                                {}
func (n *NoopMetrics) RecordExternalAPICall(provider string, duration time.Duration) {}
func (n *NoopMetrics) RecordAuthorization(state string, duration time.Duration)      {}
func (n *NoopMetrics) RecordForcedSignOut()                                          {}
func (n *NoopMetrics) RecordStaleResolution()                                        {}
func (n *NoopMetrics) RecordContentMutation(resource, action string, success bool)   {}
func (n *NoopMetrics) RecordContactMessage(success bool)                             {}
func (n *NoopMetrics) SetAdminsCount(total, superAdmins int)                         {}
func (n *NoopMetrics) SetActiveTabsCount(count int)                                  {}
func (n *NoopMetrics) RecordDatabaseQueryError(operation string)                     {}
