// Package tracer provides OpenTelemetry tracing for the TrakJobs client.
//
// The HTTP client opens one span per API request. Spans are exported over
// OTLP/HTTP when telemetry.otlp_endpoint is configured; otherwise they are
// created and dropped, which keeps the call sites unconditional.
package tracer
