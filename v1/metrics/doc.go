// Package metrics exposes Prometheus metrics for satmeta.
//
// *Metrics is also the observability.Observer wired into the gateway, the
// recorder, the transports and the cache, so every reported operation ends up
// in operations_total and operation_duration_seconds labelled by component and
// operation. The API records requests_total and request_duration_seconds.
package metrics
