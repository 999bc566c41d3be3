package metrics

// DefaultMetricsAddress is used when Config.Address is empty.
const DefaultMetricsAddress = ":9090"

// Config controls the Prometheus registry and the /metrics HTTP server.
type Config struct {
	// Address the metrics server listens on, e.g. ":9090" or "127.0.0.1:9100".
	Address string `yaml:"address" mapstructure:"address"`

	// EnableDefaultCollectors registers the Go runtime, process and build info collectors.
	EnableDefaultCollectors bool `yaml:"enable_default_collectors" mapstructure:"enable_default_collectors"`

	// Namespace prefixes every metric name, e.g. "satmeta" gives "satmeta_requests_total".
	Namespace string `yaml:"namespace" mapstructure:"namespace"`

	// ServiceName is added as the constant "service" label.
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`
}
