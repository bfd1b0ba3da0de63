// Package metrics provides the Prometheus registry reference for the API
// client. All metrics are defined in the packages that produce them (client,
// pagination) to maintain modularity and avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the API client.
// All metrics are automatically registered via promauto in their respective
// packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - lmapi_requests_total{endpoint, status} (Counter): Total requests by endpoint and HTTP status
//   - lmapi_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - lmapi_errors_total{class} (Counter): Errors by class (auth, rate_limit, validation, transport, server)
//
// Rate Limit Metrics (pkg/client):
//   - lmapi_rate_limit_retries_total (Counter): Requests retried once after HTTP 429
//   - lmapi_rate_limit_aborts_total (Counter): Requests aborted after the retry was also rate limited
//
// Pagination Metrics (pkg/pagination):
//   - lmapi_pages_fetched_total (Counter): Pages fetched across all paginated runs
//   - lmapi_paginated_runs_total{outcome} (Counter): Paginated runs by outcome (success, error)
//
// Example Prometheus Queries:
//
//   # Request Error Rate
//   rate(lmapi_errors_total[5m])
//
//   # Rate-Limit Pressure
//   rate(lmapi_rate_limit_retries_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(lmapi_request_duration_seconds_bucket[5m]))
//
//   # Average Pages per Run
//   rate(lmapi_pages_fetched_total[5m]) / rate(lmapi_paginated_runs_total[5m])
