// Package metric provides Prometheus metrics for the TrakJobs client.
//
// Metrics include:
//
//   - API request counts and latencies, by method, route and status
//   - In-flight request gauge
//   - Session invalidations triggered by token-problem responses
//   - List controller fetch outcomes
//
// The registry is private to the process; `trakjobs-cli browse
// --metrics-addr` exposes it at /metrics.
package metric
