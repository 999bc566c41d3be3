package config

import (
	"time"

	"github.com/Aleph-Alpha/satmeta/v1/api"
	"github.com/Aleph-Alpha/satmeta/v1/kafka"
	"github.com/Aleph-Alpha/satmeta/v1/logger"
	"github.com/Aleph-Alpha/satmeta/v1/metrics"
	"github.com/Aleph-Alpha/satmeta/v1/mongodb"
	"github.com/Aleph-Alpha/satmeta/v1/rabbit"
	"github.com/Aleph-Alpha/satmeta/v1/redis"
	"github.com/Aleph-Alpha/satmeta/v1/tracer"
)

// Supported subscriber transports.
const (
	TransportRabbit = "rabbit"
	TransportKafka  = "kafka"
)

// AppConfig is the whole configuration file of satmeta.
type AppConfig struct {
	APIServer  api.Config     `yaml:"api_server" mapstructure:"api_server"`
	Database   Database       `yaml:"database" mapstructure:"database"`
	Subscriber Subscriber     `yaml:"subscriber" mapstructure:"subscriber"`
	Log        logger.Config  `yaml:"logger" mapstructure:"logger"`
	Prometheus metrics.Config `yaml:"metrics" mapstructure:"metrics"`
	Tracing    tracer.Config  `yaml:"tracer" mapstructure:"tracer"`
	Cache      redis.Config   `yaml:"cache" mapstructure:"cache"`
}

// Database is the database section. Timeout is given in seconds.
type Database struct {
	MainDatabaseName   string  `yaml:"main_database_name" mapstructure:"main_database_name"`
	MainCollectionName string  `yaml:"main_collection_name" mapstructure:"main_collection_name"`
	URL                string  `yaml:"url" mapstructure:"url"`
	Timeout            float64 `yaml:"timeout" mapstructure:"timeout"`
}

// Subscriber selects the message bus the recorder listens to.
type Subscriber struct {
	Transport string        `yaml:"transport" mapstructure:"transport"`
	Rabbit    rabbit.Config `yaml:"rabbit" mapstructure:"rabbit"`
	Kafka     kafka.Config  `yaml:"kafka" mapstructure:"kafka"`
}

// MongoDB returns the gateway configuration.
func (c *AppConfig) MongoDB() mongodb.Config {
	return mongodb.Config{
		MainDatabaseName:   c.Database.MainDatabaseName,
		MainCollectionName: c.Database.MainCollectionName,
		URL:                c.Database.URL,
		Timeout:            time.Duration(c.Database.Timeout * float64(time.Second)),
	}
}

// Rabbit returns the subscriber configuration for RabbitMQ, always as a consumer.
func (c *AppConfig) Rabbit() rabbit.Config {
	cfg := c.Subscriber.Rabbit
	cfg.Channel.IsConsumer = true
	return cfg
}

// Kafka returns the subscriber configuration for Kafka, always as a consumer.
func (c *AppConfig) Kafka() kafka.Config {
	cfg := c.Subscriber.Kafka
	cfg.IsConsumer = true
	return cfg
}

func (c *AppConfig) Redis() redis.Config     { return c.Cache }
func (c *AppConfig) Logger() logger.Config   { return c.Log }
func (c *AppConfig) Metrics() metrics.Config { return c.Prometheus }
func (c *AppConfig) Tracer() tracer.Config   { return c.Tracing }
func (c *AppConfig) API() api.Config         { return c.APIServer }
