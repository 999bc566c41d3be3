package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the Prometheus registry, the collectors satmeta records into and
// the HTTP server exposing them.
type Metrics struct {
	Server *http.Server

	Registry *prometheus.Registry

	registerer prometheus.Registerer
	namespace  string

	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	operationSize     *prometheus.CounterVec
}

// NewMetrics creates the registry, registers the built-in collectors and
// prepares (but does not start) the metrics server.
func NewMetrics(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()

	var registerer prometheus.Registerer = registry
	if cfg.ServiceName != "" {
		registerer = prometheus.WrapRegistererWith(prometheus.Labels{"service": cfg.ServiceName}, registry)
	}

	m := &Metrics{
		Registry:   registry,
		registerer: registerer,
		namespace:  cfg.Namespace,
	}

	m.requestsTotal = createCounterVec(cfg.Namespace, "requests_total",
		"Total number of processed API requests", []string{"status"})
	m.requestDuration = createHistogramVec(cfg.Namespace, "request_duration_seconds",
		"Duration of API requests in seconds", []string{"endpoint"}, prometheus.DefBuckets)
	m.operationsTotal = createCounterVec(cfg.Namespace, "operations_total",
		"Operations reported by satmeta components", []string{"component", "operation", "status"})
	m.operationDuration = createHistogramVec(cfg.Namespace, "operation_duration_seconds",
		"Duration of component operations in seconds", []string{"component", "operation"}, prometheus.DefBuckets)
	m.operationSize = createCounterVec(cfg.Namespace, "operation_size_total",
		"Accumulated size or item count of component operations", []string{"component", "operation"})

	registerer.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.operationsTotal,
		m.operationDuration,
		m.operationSize,
	)

	if cfg.EnableDefaultCollectors {
		registerer.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	address := cfg.Address
	if address == "" {
		address = DefaultMetricsAddress
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	m.Server = &http.Server{
		Addr:    address,
		Handler: mux,
	}

	return m
}
