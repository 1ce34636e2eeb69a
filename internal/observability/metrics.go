package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	httpRequestsTotal      *prometheus.CounterVec
	httpLatencySeconds     *prometheus.HistogramVec
	httpErrorsTotal        *prometheus.CounterVec
	verificationOutcomes   *prometheus.CounterVec
	recordUploadRollbacks  prometheus.Counter
	auditEntriesPurged     prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		verificationOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "verification_lookups_total",
			Help: "Credential verification lookups grouped by outcome.",
		}, []string{"outcome"})

		recordUploadRollbacks = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "record_upload_rollbacks_total",
			Help: "Graduate record creations rolled back after a partial failure.",
		})

		auditEntriesPurged = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "audit_entries_purged_total",
			Help: "Audit log entries removed by the retention job.",
		})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			verificationOutcomes,
			recordUploadRollbacks,
			auditEntriesPurged,
		)
	})
}

// HTTPRequests exposes the counter for served requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// VerificationOutcomes exposes the counter for verification lookups.
func VerificationOutcomes() *prometheus.CounterVec {
	RegisterMetrics()
	return verificationOutcomes
}

// RecordUploadRollbacks exposes the counter for rolled-back record creations.
func RecordUploadRollbacks() prometheus.Counter {
	RegisterMetrics()
	return recordUploadRollbacks
}

// AuditEntriesPurged exposes the counter for purged audit entries.
func AuditEntriesPurged() prometheus.Counter {
	RegisterMetrics()
	return auditEntriesPurged
}
