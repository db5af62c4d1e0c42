// Package metrics holds the prometheus collectors of the service. Every method is
// safe on a nil *Metrics so callers may run without instrumentation.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "creditcard"

type Metrics struct {
	Registry *prometheus.Registry

	applicationsSubmitted *prometheus.CounterVec
	submissionRejections  *prometheus.CounterVec
	statusUpdates         *prometheus.CounterVec
	creditScores          prometheus.Histogram
	numberRetries         prometheus.Counter
	auditDropped          prometheus.Counter
	auditSinkErrors       *prometheus.CounterVec
	httpRequests          *prometheus.CounterVec
	httpLatency           *prometheus.HistogramVec
	rateLimited           prometheus.Counter
}

// New registers all collectors on a fresh registry, together with the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		applicationsSubmitted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "applications_submitted_total",
			Help:      "Applications persisted, by initial status",
		}, []string{"status"}),
		submissionRejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submission_rejections_total",
			Help:      "Submissions refused before persisting, by error code",
		}, []string{"code"}),
		statusUpdates: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_updates_total",
			Help:      "Admin status updates, by new status",
		}, []string{"status"}),
		creditScores: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "credit_score",
			Help:      "Distribution of retrieved credit scores",
			Buckets:   []float64{400, 500, 600, 650, 700, 750, 800, 850, 900},
		}),
		numberRetries: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "application_number_retries_total",
			Help:      "Submissions retried after an application number collision",
		}),
		auditDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_dropped_total",
			Help:      "Audit entries dropped because the queue was full",
		}),
		auditSinkErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_sink_errors_total",
			Help:      "Audit write failures, by sink",
		}, []string{"sink"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by method, route and status code",
		}, []string{"method", "route", "code"}),
		httpLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		rateLimited: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests refused by the rate limiter",
		}),
	}
}

func (m *Metrics) ApplicationSubmitted(status string, score int) {
	if m == nil {
		return
	}
	m.applicationsSubmitted.WithLabelValues(status).Inc()
	m.creditScores.Observe(float64(score))
}

func (m *Metrics) SubmissionRejected(code string) {
	if m == nil {
		return
	}
	m.submissionRejections.WithLabelValues(code).Inc()
}

func (m *Metrics) StatusUpdated(status string) {
	if m == nil {
		return
	}
	m.statusUpdates.WithLabelValues(status).Inc()
}

func (m *Metrics) NumberRetried() {
	if m == nil {
		return
	}
	m.numberRetries.Inc()
}

func (m *Metrics) AuditDropped() {
	if m == nil {
		return
	}
	m.auditDropped.Inc()
}

func (m *Metrics) AuditSinkFailed(sink string) {
	if m == nil {
		return
	}
	m.auditSinkErrors.WithLabelValues(sink).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.httpLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}
