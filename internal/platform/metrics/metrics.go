// Package metrics owns the Prometheus instruments the hosts record into and
// the scrape endpoint that exposes them. Each host builds one Collector at
// startup; collectors never share a registry, so tests can build as many as
// they need without duplicate registration panics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the registry and the instruments for one host process.
type Collector struct {
	registry *prometheus.Registry

	// HTTPRequests counts requests by method, route pattern, and status.
	HTTPRequests *prometheus.CounterVec

	// HTTPDuration observes request latency by method and route pattern.
	HTTPDuration *prometheus.HistogramVec

	// DBOperations counts database operations by operation, table, and
	// outcome. Background jobs record their work here; request-path queries
	// are already visible through HTTPDuration.
	DBOperations *prometheus.CounterVec
}

// NewCollector creates a collector with its own registry. The namespace
// prefixes every metric name.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	dbOperations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "db_operations_total",
			Help:      "Total number of database operations.",
		},
		[]string{"operation", "table", "status"},
	)

	registry.MustRegister(httpRequests, httpDuration, dbOperations)

	return &Collector{
		registry:     registry,
		HTTPRequests: httpRequests,
		HTTPDuration: httpDuration,
		DBOperations: dbOperations,
	}
}

// Handler returns the scrape endpoint for this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordDBOperation counts one database operation, bucketing the outcome into
// ok or error.
func (c *Collector) RecordDBOperation(operation, table string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.DBOperations.WithLabelValues(operation, table, status).Inc()
}
