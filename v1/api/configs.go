package api

import (
	"fmt"
	"net/url"
	"time"
)

const (
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// Config configures the HTTP server.
type Config struct {
	// URL is where the server listens, e.g. "http://localhost:8080". Only
	// the host and port are used.
	URL string `yaml:"url" mapstructure:"url"`

	ReadTimeout     time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`

	// AllowedOrigins for CORS. Empty allows every origin.
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// Addr returns the host:port part of URL.
func (c Config) Addr() (string, error) {
	u, err := url.Parse(c.URL)
	if err != nil {
		return "", fmt.Errorf("invalid api server url %q: %w", c.URL, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid api server url %q: missing host", c.URL)
	}
	return u.Host, nil
}

func (c Config) withDefaults() Config {
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	return c
}
