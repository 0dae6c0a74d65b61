package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "board_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// DatabaseErrors counts failed database operations by operation, table and error code.
	DatabaseErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "board_database_errors_total",
		Help: "Total number of failed database operations",
	}, []string{"operation", "table", "code"})
)

// MetricsEnabled gates recording; the CLI turns it off via METRICS_ENABLED.
var MetricsEnabled = true

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	if !MetricsEnabled {
		return
	}
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// CountError records one failed operation.
func CountError(operation, table, code string) {
	if !MetricsEnabled {
		return
	}
	if code == "" {
		code = "UNKNOWN"
	}
	DatabaseErrors.WithLabelValues(operation, table, code).Inc()
}
