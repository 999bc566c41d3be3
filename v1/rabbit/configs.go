package rabbit

import "context"

// Config holds everything the subscriber needs to reach its queue.
type Config struct {
	Connection Connection `yaml:"connection" mapstructure:"connection"`
	Channel    Channel    `yaml:"channel" mapstructure:"channel"`
	DeadLetter DeadLetter `yaml:"dead_letter" mapstructure:"dead_letter"`
}

// Connection describes the broker endpoint and credentials.
type Connection struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     uint   `yaml:"port" mapstructure:"port"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	VHost    string `yaml:"vhost" mapstructure:"vhost"`

	// IsSSLEnabled switches to amqps://. With UseCert the client also presents
	// a certificate and verifies the server against CACertPath.
	IsSSLEnabled   bool   `yaml:"is_ssl_enabled" mapstructure:"is_ssl_enabled"`
	UseCert        bool   `yaml:"use_cert" mapstructure:"use_cert"`
	CACertPath     string `yaml:"ca_cert_path" mapstructure:"ca_cert_path"`
	ClientCertPath string `yaml:"client_cert_path" mapstructure:"client_cert_path"`
	ClientKeyPath  string `yaml:"client_key_path" mapstructure:"client_key_path"`
	ServerName     string `yaml:"server_name" mapstructure:"server_name"`
}

// Channel describes the exchange the metadata messages are published on and
// the queue the recorder reads from.
type Channel struct {
	ExchangeName string `yaml:"exchange_name" mapstructure:"exchange_name"`
	ExchangeType string `yaml:"exchange_type" mapstructure:"exchange_type"`
	RoutingKey   string `yaml:"routing_key" mapstructure:"routing_key"`
	QueueName    string `yaml:"queue_name" mapstructure:"queue_name"`

	// PrefetchCount limits unacknowledged deliveries. The recorder handles one
	// message at a time, so 1 keeps redelivery after a crash minimal.
	PrefetchCount int `yaml:"prefetch_count" mapstructure:"prefetch_count"`

	// IsConsumer declares and binds the queue on connect.
	IsConsumer bool `yaml:"is_consumer" mapstructure:"is_consumer"`

	ContentType string `yaml:"content_type" mapstructure:"content_type"`
}

// DeadLetter receives messages the recorder rejects. Disabled when ExchangeName is empty.
type DeadLetter struct {
	ExchangeName string `yaml:"exchange_name" mapstructure:"exchange_name"`
	QueueName    string `yaml:"queue_name" mapstructure:"queue_name"`
	RoutingKey   string `yaml:"routing_key" mapstructure:"routing_key"`

	// Ttl in seconds after which an unconsumed message is dead-lettered. Zero disables expiry.
	Ttl int `yaml:"ttl" mapstructure:"ttl"`
}

// Logger is the logging surface of the rabbit client.
type Logger interface {
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}
