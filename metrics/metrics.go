// Package metrics provides Prometheus metrics for docs-portal.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IdentityOperationsTotal counts identity provider calls by outcome.
	IdentityOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docsportal",
			Name:      "identity_operations_total",
			Help:      "Total number of identity provider operations",
		},
		[]string{"operation", "outcome"},
	)

	// IdentityOperationDuration measures identity provider call latency.
	IdentityOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docsportal",
			Name:      "identity_operation_duration_seconds",
			Help:      "Duration of identity provider operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// FormSubmissionsTotal counts login/register submissions by outcome.
	FormSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docsportal",
			Name:      "form_submissions_total",
			Help:      "Total number of auth form submissions",
		},
		[]string{"form", "outcome"},
	)

	// StatusSubscribers tracks mounted auth-status widgets.
	StatusSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docsportal",
			Name:      "status_subscribers",
			Help:      "Number of mounted auth-status widgets",
		},
	)

	// BrowserSessions tracks live browser bindings.
	BrowserSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docsportal",
			Name:      "browser_sessions",
			Help:      "Number of live browser sessions held in memory",
		},
	)
)

// RecordIdentityOperation records one identity provider call.
func RecordIdentityOperation(operation, outcome string, duration float64) {
	IdentityOperationsTotal.WithLabelValues(operation, outcome).Inc()
	IdentityOperationDuration.WithLabelValues(operation).Observe(duration)
}

// RecordFormSubmission records one form submission.
func RecordFormSubmission(form, outcome string) {
	FormSubmissionsTotal.WithLabelValues(form, outcome).Inc()
}
