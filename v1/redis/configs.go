package redis

import "time"

const (
	DefaultHost         = "localhost"
	DefaultPort         = 6379
	DefaultTTL          = 5 * time.Minute
	DefaultKeyPrefix    = "satmeta:"
	DefaultDialTimeout  = 5 * time.Second
	DefaultReadTimeout  = 3 * time.Second
	DefaultWriteTimeout = 3 * time.Second
)

// Config configures the response cache. With Enabled false the FX module
// provides a Cache that never hits.
type Config struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`

	// TTL bounds how stale a cached response can get when no recorder
	// invalidates it.
	TTL time.Duration `yaml:"ttl" mapstructure:"ttl"`

	// KeyPrefix namespaces every key written by this process.
	KeyPrefix string `yaml:"key_prefix" mapstructure:"key_prefix"`

	DialTimeout  time.Duration `yaml:"dial_timeout" mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`

	TLS TLSConfig `yaml:"tls" mapstructure:"tls"`
}

type TLSConfig struct {
	Enabled            bool   `yaml:"enabled" mapstructure:"enabled"`
	CACertPath         string `yaml:"ca_cert_path" mapstructure:"ca_cert_path"`
	ClientCertPath     string `yaml:"client_cert_path" mapstructure:"client_cert_path"`
	ClientKeyPath      string `yaml:"client_key_path" mapstructure:"client_key_path"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify" mapstructure:"insecure_skip_verify"`
	ServerName         string `yaml:"server_name" mapstructure:"server_name"`
}

// Logger is the logging surface of the cache.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
}

func (c Config) withDefaults() Config {
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.TTL == 0 {
		c.TTL = DefaultTTL
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = DefaultKeyPrefix
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = DefaultDialTimeout
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	return c
}
