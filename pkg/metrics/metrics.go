// Package metrics exposes the proxy's Prometheus collectors.
//
// Collectors live next to the code they measure and register themselves via
// promauto:
//
// Upstream (pkg/client):
//   - lex_upstream_requests_total{method, status} (Counter)
//   - lex_upstream_request_duration_seconds{method} (Histogram)
//   - lex_upstream_errors_total{class} (Counter): client, server, network, state, unexpected
//
// Cache (pkg/cache):
//   - lex_cache_hits_total (Counter)
//   - lex_cache_misses_total (Counter)
//   - lex_cache_evictions_total{reason} (Counter): expired, capacity
//   - lex_cache_entries (Gauge)
//
// Search (pkg/search):
//   - lex_searches_total{outcome} (Counter): hit, miss, error
//   - lex_search_duration_seconds{outcome} (Histogram)
//   - lex_searches_shared_total (Counter)
//
// Example queries:
//
//	# Cache hit rate
//	sum(rate(lex_searches_total{outcome="hit"}[5m])) / sum(rate(lex_searches_total[5m]))
//
//	# Postback share of upstream traffic
//	sum(rate(lex_upstream_requests_total{method="POST"}[5m])) / sum(rate(lex_upstream_requests_total[5m]))
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is where every package registers its collectors
// (promauto.With(Registry)).
var Registry = prometheus.DefaultRegisterer

// Gatherer is the source served by Handler.
var Gatherer = prometheus.DefaultGatherer

// Handler serves the registered collectors in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}
