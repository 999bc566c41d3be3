package kafka

import (
	"time"

	"github.com/segmentio/kafka-go"
)

// Defaults applied by NewClient to zero fields.
const (
	DefaultMinBytes       = 1
	DefaultMaxBytes       = 10e6
	DefaultMaxWait        = 500 * time.Millisecond
	DefaultCommitInterval = 0
	DefaultStartOffset    = kafka.FirstOffset
	DefaultMaxAttempts    = 3
	DefaultWriteTimeout   = 10 * time.Second
)

// Config describes the topic the metadata messages arrive on.
type Config struct {
	Brokers []string `yaml:"brokers" mapstructure:"brokers"`
	Topic   string   `yaml:"topic" mapstructure:"topic"`

	// GroupID enables consumer groups and offset commits. Without it the
	// reader starts at StartOffset on every run.
	GroupID string `yaml:"group_id" mapstructure:"group_id"`

	// IsConsumer creates a reader; otherwise a writer is created.
	IsConsumer bool `yaml:"is_consumer" mapstructure:"is_consumer"`

	MinBytes    int           `yaml:"min_bytes" mapstructure:"min_bytes"`
	MaxBytes    int           `yaml:"max_bytes" mapstructure:"max_bytes"`
	MaxWait     time.Duration `yaml:"max_wait" mapstructure:"max_wait"`
	StartOffset int64         `yaml:"start_offset" mapstructure:"start_offset"`

	MaxAttempts  int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`

	TLS  TLSConfig  `yaml:"tls" mapstructure:"tls"`
	SASL SASLConfig `yaml:"sasl" mapstructure:"sasl"`
}

// TLSConfig enables TLS towards the brokers.
type TLSConfig struct {
	Enabled            bool   `yaml:"enabled" mapstructure:"enabled"`
	CACertPath         string `yaml:"ca_cert_path" mapstructure:"ca_cert_path"`
	ClientCertPath     string `yaml:"client_cert_path" mapstructure:"client_cert_path"`
	ClientKeyPath      string `yaml:"client_key_path" mapstructure:"client_key_path"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify" mapstructure:"insecure_skip_verify"`
}

// SASLConfig enables SASL authentication. Mechanism is one of PLAIN,
// SCRAM-SHA-256 or SCRAM-SHA-512.
type SASLConfig struct {
	Enabled   bool   `yaml:"enabled" mapstructure:"enabled"`
	Mechanism string `yaml:"mechanism" mapstructure:"mechanism"`
	Username  string `yaml:"username" mapstructure:"username"`
	Password  string `yaml:"password" mapstructure:"password"`
}

// Logger is the logging surface of the kafka client.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

func (c Config) withDefaults() Config {
	if c.MinBytes == 0 {
		c.MinBytes = DefaultMinBytes
	}
	if c.MaxBytes == 0 {
		c.MaxBytes = DefaultMaxBytes
	}
	if c.MaxWait == 0 {
		c.MaxWait = DefaultMaxWait
	}
	if c.StartOffset == 0 {
		c.StartOffset = DefaultStartOffset
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	return c
}
