// Package metrics exposes prometheus instrumentation for the daemon.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Business metrics
	sessionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "whiskynights_sessions_total",
		Help: "Number of session records after the last mutation",
	})

	enrichmentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "whiskynights_enrichment_total",
		Help: "Enrichment reconciliations by outcome",
	}, []string{"outcome"}) // outcome=enriched|skipped|failed

	searchRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "whiskynights_search_requests_total",
		Help: "Whisky searches by result source mix",
	}, []string{"source"}) // source=local|library

	// Catalog client metrics
	catalogRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "whiskynights_catalog_requests_total",
		Help: "Outbound catalog page fetches by outcome",
	}, []string{"outcome"}) // outcome=success|empty|error

	catalogRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "whiskynights_catalog_request_duration_seconds",
		Help:    "Latency of outbound catalog page fetches",
		Buckets: prometheus.DefBuckets,
	})

	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "whiskynights_http_requests_total",
		Help: "HTTP requests by method, route and status code",
	}, []string{"method", "route", "status"})
)

// SetSessionsTotal records the current size of the session record set.
func SetSessionsTotal(n int) {
	sessionsTotal.Set(float64(n))
}

// RecordEnrichment counts one reconciliation outcome.
func RecordEnrichment(outcome string) {
	enrichmentTotal.WithLabelValues(outcome).Inc()
}

// RecordSearchResult counts one emitted search result by source.
func RecordSearchResult(source string) {
	searchRequestsTotal.WithLabelValues(source).Inc()
}

// RecordCatalogRequest counts one outbound catalog fetch and its latency.
func RecordCatalogRequest(outcome string, elapsed time.Duration) {
	catalogRequestsTotal.WithLabelValues(outcome).Inc()
	catalogRequestDuration.Observe(elapsed.Seconds())
}

// RecordHTTPRequest counts one served HTTP request.
func RecordHTTPRequest(method, route string, status int) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}
