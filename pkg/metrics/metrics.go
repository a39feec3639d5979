// Package metrics provides the central Prometheus registry reference for
// the harvester. All metrics are defined in their respective packages
// (client, throttle, cache) to maintain modularity and avoid circular
// dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the harvester.
// All metrics are automatically registered via promauto in their packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Throttle Metrics (pkg/throttle):
//   - harvester_throttle_dispatches_total (Counter): Dispatches released by the throttle
//   - harvester_throttle_wait_seconds (Histogram): Time spent waiting for a dispatch slot
//
// Request Metrics (pkg/client):
//   - harvester_requests_total{status} (Counter): Provider requests by HTTP status
//   - harvester_request_duration_seconds (Histogram): Request duration
//   - harvester_errors_total{class} (Counter): Errors by class (not_found, rate_limit, http, network)
//
// Retry Metrics (pkg/client):
//   - harvester_retries_total (Counter): Retry attempts
//   - harvester_retry_backoff_seconds (Histogram): Backoff durations applied
//   - harvester_retry_exhausted_total (Counter): Requests that exhausted max retries
//
// Cache Metrics (pkg/cache):
//   - harvester_cache_hits_total (Counter): Cache hits
//   - harvester_cache_misses_total (Counter): Cache misses
//   - harvester_cache_errors_total{operation} (Counter): Cache operation errors
//
// Example Prometheus Queries:
//
//   # Request Error Rate
//   rate(harvester_errors_total[5m])
//
//   # Retry Pressure
//   rate(harvester_retries_total[5m]) / rate(harvester_requests_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(harvester_request_duration_seconds_bucket[5m]))
//
//   # Cache Hit Rate
//   rate(harvester_cache_hits_total[5m]) /
//   (rate(harvester_cache_hits_total[5m]) + rate(harvester_cache_misses_total[5m]))
