package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables overriding file values, e.g.
// SATMETA_DATABASE_URL for database.url.
const EnvPrefix = "SATMETA"

var defaults = map[string]interface{}{
	"api_server.url":                        "http://localhost:8000",
	"database.main_database_name":           "",
	"database.main_collection_name":         "",
	"database.url":                          "",
	"database.timeout":                      0,
	"subscriber.transport":                  TransportRabbit,
	"subscriber.rabbit.connection.host":     "localhost",
	"subscriber.rabbit.connection.port":     5672,
	"subscriber.rabbit.connection.user":     "guest",
	"subscriber.rabbit.connection.password": "guest",
	"subscriber.rabbit.channel.queue_name":  "",
	"subscriber.kafka.brokers":              []string{},
	"subscriber.kafka.topic":                "",
	"subscriber.kafka.group_id":             "",
	"logger.level":                          "info",
	"logger.service_name":                   "satmeta",
	"metrics.address":                       ":9090",
	"metrics.enable_default_collectors":     true,
	"metrics.namespace":                     "satmeta",
	"metrics.service_name":                  "satmeta",
	"tracer.service_name":                   "satmeta",
	"tracer.app_env":                        "",
	"tracer.enable_export":                  false,
	"cache.enabled":                         false,
	"cache.host":                            "localhost",
	"cache.port":                            6379,
	"cache.password":                        "",
	"cache.db":                              0,
	"cache.ttl":                             "5m",
	"cache.key_prefix":                      "satmeta:",
}

// NewViper returns a viper instance carrying the defaults and reading
// SATMETA_ prefixed environment variables.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	return v
}

// Load reads the YAML file at path, applies environment overrides and
// validates the result.
func Load(path string) (*AppConfig, error) {
	return LoadFrom(NewViper(), path)
}

// LoadFrom is Load on a caller supplied viper instance, for example one with
// command line flags bound. An empty path reads defaults and environment only.
func LoadFrom(v *viper.Viper, path string) (*AppConfig, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the sections every command needs.
func (c *AppConfig) Validate() error {
	var errs []error
	if c.Database.Timeout < 0 {
		errs = append(errs, fmt.Errorf("%w: %v", ErrNegativeTimeout, c.Database.Timeout))
	}
	if err := c.MongoDB().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("database: %w", err))
	}
	switch c.Subscriber.Transport {
	case TransportRabbit, TransportKafka:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownTransport, c.Subscriber.Transport))
	}
	if _, err := c.APIServer.Addr(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidAPIURL, err))
	}
	return errors.Join(errs...)
}

// MustBindPFlag binds key to flag on v and panics if the binding fails.
func MustBindPFlag(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic("failed to bind pflag: " + err.Error())
	}
}
