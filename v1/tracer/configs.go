package tracer

// Config configures the OpenTelemetry tracer provider.
type Config struct {
	// ServiceName is reported as the service.name resource attribute.
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`

	// AppEnv is reported as deployment.environment, e.g. "production".
	AppEnv string `yaml:"app_env" mapstructure:"app_env"`

	// EnableExport turns on the OTLP/HTTP exporter. The endpoint is taken from
	// the standard OTEL_EXPORTER_OTLP_* environment variables.
	EnableExport bool `yaml:"enable_export" mapstructure:"enable_export"`
}
