// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

// Package metrics holds the Prometheus collectors for Leadbridge.
//
// Collectors are registered on the default registry through promauto and
// exposed by the API router at GET /metrics. Covered areas:
//   - API endpoint latency and throughput
//   - Lead intake outcomes (validation, reconciliation, metadata, email)
//   - Shopify Admin API latency and circuit breaker state
//   - Idempotency store operations
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Lead Intake Metrics
	LeadSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_submissions_total",
			Help: "Total number of lead submissions by outcome",
		},
		[]string{"outcome"}, // "accepted", "missing_contact", "invalid_json", "payload_too_large", "replayed", "internal_error"
	)

	LeadReconcileResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_reconcile_results_total",
			Help: "Total number of customer reconciliations by result",
		},
		[]string{"result"}, // "created", "merged", "failed"
	)

	LeadMetadataAttach = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_metadata_attach_total",
			Help: "Total number of customer metafield writes by result",
		},
		[]string{"result"}, // "success", "failure"
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Total number of notification emails by audience and outcome",
		},
		[]string{"audience", "outcome"}, // audience: "submitter", "operator"; outcome: "accepted", "failed", "skipped"
	)

	NotificationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notification_duration_seconds",
			Help:    "Duration of email provider calls in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"audience"},
	)

	WizardActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wizard_actions_total",
			Help: "Total number of wizard step actions",
		},
		[]string{"action"}, // "show-results", "finish-send", "invalid"
	)

	CTAEvents = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cta_events_total",
			Help: "Total number of CTA events recorded",
		},
	)

	// Shopify Admin API Metrics
	CRMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crm_request_duration_seconds",
			Help:    "Duration of Shopify Admin API calls in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		},
		[]string{"operation", "status"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Idempotency Store Metrics
	IdempotencyOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "idempotency_operations_total",
			Help: "Total number of idempotency store operations",
		},
		[]string{"operation", "result"}, // operation: "lookup", "save", "cleanup"; result: "hit", "miss", "ok", "error"
	)

	IdempotencyEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "idempotency_entries",
			Help: "Current number of stored idempotent responses",
		},
		[]string{"backend"},
	)

	// Application Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "leadbridge_info",
			Help: "Application version information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "leadbridge_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordLeadSubmission counts one lead POST by outcome.
func RecordLeadSubmission(outcome string) {
	LeadSubmissions.WithLabelValues(outcome).Inc()
}

// RecordReconcile counts a reconciliation result.
func RecordReconcile(created bool, err error) {
	switch {
	case err != nil:
		LeadReconcileResults.WithLabelValues("failed").Inc()
	case created:
		LeadReconcileResults.WithLabelValues("created").Inc()
	default:
		LeadReconcileResults.WithLabelValues("merged").Inc()
	}
}

// RecordMetadataAttach counts a metafield write.
func RecordMetadataAttach(err error) {
	if err != nil {
		LeadMetadataAttach.WithLabelValues("failure").Inc()
		return
	}
	LeadMetadataAttach.WithLabelValues("success").Inc()
}

// RecordNotification records an email send. Skipped sends have no duration.
func RecordNotification(audience, outcome string, duration time.Duration) {
	NotificationsTotal.WithLabelValues(audience, outcome).Inc()
	if outcome != "skipped" {
		NotificationDuration.WithLabelValues(audience).Observe(duration.Seconds())
	}
}

// RecordCRMRequest records a Shopify Admin API call. status is the HTTP
// status code, or 0 when no response was received.
func RecordCRMRequest(operation string, status int, duration time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	CRMRequestDuration.WithLabelValues(operation, label).Observe(duration.Seconds())
}

// RecordIdempotency counts an idempotency store operation.
func RecordIdempotency(operation, result string) {
	IdempotencyOperations.WithLabelValues(operation, result).Inc()
}
