// Package observability provides Prometheus metrics and OpenTelemetry
// tracing for the service.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ironknowledge_redis_error_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// BoxRequestsIssued counts successfully issued box requests.
	BoxRequestsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ironknowledge_box_requests_issued_total",
		Help: "Total number of box requests issued",
	})

	// BoxRequestsCancelled counts successfully redeemed cancellation tokens.
	BoxRequestsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ironknowledge_box_requests_cancelled_total",
		Help: "Total number of box requests cancelled",
	})

	// EmailsSent counts outbound emails by provider and outcome.
	EmailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ironknowledge_emails_sent_total",
		Help: "Total number of outbound emails by provider and outcome",
	}, []string{"provider", "outcome"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ironknowledge_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
