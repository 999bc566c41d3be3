package logger

// Log levels accepted in Config.Level.
const (
	Debug   = "debug"
	Info    = "info"
	Warning = "warning"
	Error   = "error"
)

// Config holds the settings for the zap-backed logger.
type Config struct {
	// Level is one of debug, info, warning or error. Anything else falls back to info.
	Level string `yaml:"level" mapstructure:"level"`

	// ServiceName is attached to every entry as the "service" field.
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`

	// EnableTracing adds trace_id and span_id to entries logged through the
	// ...WithContext methods when the context carries a valid span.
	EnableTracing bool `yaml:"enable_tracing" mapstructure:"enable_tracing"`
}
