package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Aleph-Alpha/satmeta/v1/observability"
)

// MetricsCollector is the surface other packages record metrics through.
// *Metrics implements it.
type MetricsCollector interface {
	observability.Observer

	// IncrementRequests counts an API request by status label.
	IncrementRequests(status string)

	// RecordRequestDuration observes request latency for an endpoint.
	RecordRequestDuration(start time.Time, endpoint string)

	CreateCounter(name, help string, labels []string) *prometheus.CounterVec
	CreateHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec
}

var _ MetricsCollector = (*Metrics)(nil)
