// Package metrics exposes the Prometheus registry used by the cashback proxy.
// All metrics are defined in their respective packages (httpclient, cache,
// involve, catalog) to maintain modularity and avoid circular dependencies.
//
// This package provides the scrape handler and a reference of all metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the proxy.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the registry the scrape handler reads from.
var Gatherer = prometheus.DefaultGatherer

// Path is where Handler is mounted.
const Path = "/metrics"

// Handler serves the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Upstream Metrics (pkg/httpclient):
//   - cashback_upstream_requests_total{method, path, status} (Counter): Attempts by path and status
//   - cashback_upstream_request_duration_seconds{path} (Histogram): Call duration, retries included
//   - cashback_upstream_errors_total{class} (Counter): Failed attempts by class (client, server, network, decode)
//
// Retry Metrics (pkg/httpclient):
//   - cashback_upstream_retries_total{error_class} (Counter): Retry attempts by error class
//   - cashback_upstream_retry_backoff_seconds{error_class} (Histogram): Backoff before a retry
//   - cashback_upstream_retry_exhausted_total{error_class} (Counter): Calls that exhausted all attempts
//
// Cache Metrics (pkg/cache):
//   - cashback_cache_hits_total{keyspace} (Counter): Hits by keyspace (products, token)
//   - cashback_cache_misses_total{keyspace} (Counter): Misses by keyspace
//   - cashback_cache_writes_total{keyspace} (Counter): Successful writes by keyspace
//   - cashback_cache_errors_total{operation} (Counter): Redis errors by operation
//
// Partner API Metrics (pkg/involve):
//   - cashback_token_requests_total{outcome} (Counter): Token requests by outcome
//   - cashback_page_fetches_total{outcome} (Counter): Page fetches by outcome
//   - cashback_page_listings (Histogram): Listings per fetched page
//
// Query Metrics (pkg/catalog):
//   - cashback_catalog_responses_total{source} (Counter): Responses by source (cache, api, error)
//   - cashback_catalog_token_refreshes_total (Counter): Misses that needed a fresh token
//   - cashback_http_request_duration_seconds{route, status} (Histogram): Inbound request duration
//
// Example Prometheus Queries:
//
//   # Product Cache Hit Rate
//   sum(rate(cashback_cache_hits_total{keyspace="products"}[5m])) /
//   (sum(rate(cashback_cache_hits_total{keyspace="products"}[5m])) +
//    sum(rate(cashback_cache_misses_total{keyspace="products"}[5m])))
//
//   # Upstream Error Rate
//   rate(cashback_upstream_errors_total[5m])
//
//   # P95 Query Latency
//   histogram_quantile(0.95, rate(cashback_http_request_duration_seconds_bucket[5m]))
