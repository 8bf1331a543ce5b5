package metrics

import (
	"sync"
	"time"

	"github.com/psychmag/psychmag/internal/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is the Prometheus-backed Recorder.
var _ core.Recorder = (*Metrics)(nil)

const (
	resultSuccess = "success"
	resultError   = "error"
	resultFailure = "failure"
)

// Metrics holds the collectors registered on the default registry.
type Metrics struct {
	// Authentication Metrics
	SignInLinksTotal        *prometheus.CounterVec
	SignInTotal             *prometheus.CounterVec
	SignOutTotal            prometheus.Counter
	AuthExternalAPIDuration *prometheus.HistogramVec

	// Authorization gate
	AuthorizationTotal    *prometheus.CounterVec
	AuthorizationDuration prometheus.Histogram
	ForcedSignOutsTotal   prometheus.Counter
	StaleResolutionsTotal prometheus.Counter

	// Content
	ContentMutationsTotal *prometheus.CounterVec
	ContactMessagesTotal  *prometheus.CounterVec

	// Gauges
	AdminsTotal      prometheus.Gauge
	SuperAdminsTotal prometheus.Gauge
	ActiveTabs       prometheus.Gauge

	// HTTP Request Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Database Query Metrics
	DatabaseQueryErrorsTotal *prometheus.CounterVec
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Init returns Prometheus-backed metrics registered on the default registry
// when enabled, otherwise NoopMetrics. Registration happens at most once.
func Init(enabled bool) core.Recorder {
	if !enabled {
		return NewNoopMetrics()
	}

	once.Do(func() {
		defaultMetrics = NewMetrics(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// NewMetrics creates all collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SignInLinksTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "psychmag_sign_in_links_total",
				Help: "Total number of sign-in link requests",
			},
			[]string{"result"}, // success, error
		),
		SignInTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "psychmag_sign_in_total",
				Help: "Total number of completed sign-in attempts",
			},
			[]string{"provider", "result"},
		),
		SignOutTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "psychmag_sign_out_total",
				Help: "Total number of sign-outs",
			},
		),
		AuthExternalAPIDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "psychmag_auth_external_api_duration_seconds",
				Help:    "Duration of calls to the identity provider",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),

		AuthorizationTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "psychmag_authorization_total",
				Help: "Authorization gate outcomes",
			},
			[]string{"state"}, // unauthorized, admin, super_admin
		),
		AuthorizationDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "psychmag_authorization_duration_seconds",
				Help:    "Time taken to resolve a session into an authorization state",
				Buckets: prometheus.DefBuckets,
			},
		),
		ForcedSignOutsTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "psychmag_forced_sign_outs_total",
				Help: "Identities signed out because they are not on the allowlist",
			},
		),
		StaleResolutionsTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "psychmag_stale_resolutions_total",
				Help: "Resolution results discarded because a newer one superseded them",
			},
		),

		ContentMutationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "psychmag_content_mutations_total",
				Help: "Admin content changes",
			},
			[]string{"resource", "action", "result"},
		),
		ContactMessagesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "psychmag_contact_messages_total",
				Help: "Messages received through the contact form",
			},
			[]string{"result"},
		),

		AdminsTotal: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "psychmag_admins",
				Help: "Number of e-mails on the admin allowlist",
			},
		),
		SuperAdminsTotal: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "psychmag_super_admins",
				Help: "Number of super admins on the allowlist",
			},
		),
		ActiveTabs: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "psychmag_admin_tabs_active",
				Help: "Browser tabs holding admin session state",
			},
		),

		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Current number of HTTP requests being processed",
			},
		),

		DatabaseQueryErrorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "psychmag_database_query_errors_total",
				Help: "Database query errors during metric collection",
			},
			[]string{"operation"},
		),
	}
}

func result(success bool, failure string) string {
	if success {
		return resultSuccess
	}
	return failure
}

func (m *Metrics) RecordSignInLinkRequested(success bool) {
	m.SignInLinksTotal.WithLabelValues(result(success, resultError)).Inc()
}

func (m *Metrics) RecordSignIn(provider string, success bool) {
	m.SignInTotal.WithLabelValues(provider, result(success, resultFailure)).Inc()
}

func (m *Metrics) RecordSignOut() {
	m.SignOutTotal.Inc()
}

// RecordExternalAPICall records external API call duration
func (m *Metrics) RecordExternalAPICall(provider string, duration time.Duration) {
	m.AuthExternalAPIDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

func (m *Metrics) RecordAuthorization(state string, duration time.Duration) {
	m.AuthorizationTotal.WithLabelValues(state).Inc()
	m.AuthorizationDuration.Observe(duration.Seconds())
}

func (m *Metrics) RecordForcedSignOut() {
	m.ForcedSignOutsTotal.Inc()
}

func (m *Metrics) RecordStaleResolution() {
	m.StaleResolutionsTotal.Inc()
}

func (m *Metrics) RecordContentMutation(resource, action string, success bool) {
	m.ContentMutationsTotal.WithLabelValues(resource, action, result(success, resultError)).Inc()
}

func (m *Metrics) RecordContactMessage(success bool) {
	m.ContactMessagesTotal.WithLabelValues(result(success, resultError)).Inc()
}

// SetAdminsCount sets the allowlist gauges (for periodic updates)
func (m *Metrics) SetAdminsCount(total, superAdmins int) {
	m.AdminsTotal.Set(float64(total))
	m.SuperAdminsTotal.Set(float64(superAdmins))
}

func (m *Metrics) SetActiveTabsCount(count int) {
	m.ActiveTabs.Set(float64(count))
}

// RecordDatabaseQueryError records a database query error during metric collection
func (m *Metrics) RecordDatabaseQueryError(operation string) {
	m.DatabaseQueryErrorsTotal.WithLabelValues(operation).Inc()
}
