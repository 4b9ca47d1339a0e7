// Package metrics exposes prometheus instrumentation for the capacity
// engine.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	ReconcileRuns           *prometheus.CounterVec
	ReconciledSubscriptions prometheus.Counter
	ReconcileFailures       prometheus.Counter
	InstructionsDropped     prometheus.Counter
	ReportRequests          *prometheus.CounterVec
	ReportDuration          prometheus.Histogram
	HTTPRequests            *prometheus.CounterVec
	HTTPDuration            *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ReconcileRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "capwatch_reconcile_runs_total",
			Help: "Reconciliation task executions by result.",
		}, []string{"result"}),
		ReconciledSubscriptions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "capwatch_reconciled_subscriptions_total",
			Help: "Subscriptions whose measurements were recomputed.",
		}),
		ReconcileFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "capwatch_reconcile_subscription_failures_total",
			Help: "Per-subscription reconciliation failures.",
		}),
		InstructionsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "capwatch_reconcile_instructions_dropped_total",
			Help: "Malformed reconcile instructions discarded.",
		}),
		ReportRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "capwatch_capacity_report_requests_total",
			Help: "Capacity report requests by granularity.",
		}, []string{"granularity"}),
		ReportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "capwatch_capacity_report_duration_seconds",
			Help:    "Time spent building capacity reports.",
			Buckets: prometheus.DefBuckets,
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "capwatch_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "capwatch_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		m.ReconcileRuns,
		m.ReconciledSubscriptions,
		m.ReconcileFailures,
		m.InstructionsDropped,
		m.ReportRequests,
		m.ReportDuration,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// ObserveHTTP records one completed request.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
