package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifieds_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// PermissionChecks counts permission evaluations and their outcome (allowed|denied|error).
	PermissionChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifieds_permission_checks_total",
			Help: "Total number of permission checks",
		},
		[]string{"permission", "result"},
	)

	// AdTransitions counts moderation actions by action and outcome (success|invalid|forbidden|error).
	AdTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifieds_ad_transitions_total",
			Help: "Total number of ad status transitions attempted",
		},
		[]string{"action", "result"},
	)

	// MetadataValidationFailures counts rejected metadata payloads per category type.
	MetadataValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifieds_metadata_validation_failures_total",
			Help: "Total number of ad metadata payloads rejected by schema validation",
		},
		[]string{"category_type"},
	)

	// NotificationFailures counts best-effort notifications that could not be delivered.
	NotificationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "classifieds_notification_failures_total",
			Help: "Total number of owner notifications that failed to send",
		},
	)

	// InFlightRequests tracks requests currently being served.
	InFlightRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "classifieds_api_in_flight_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// PanicsRecovered counts handler panics turned into 500 responses.
	PanicsRecovered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifieds_api_panics_recovered_total",
			Help: "Total number of handler panics recovered by the HTTP stack",
		},
		[]string{"path"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "classifieds_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
