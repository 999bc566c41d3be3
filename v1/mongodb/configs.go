package mongodb

import (
	"errors"
	"fmt"
	"time"
)

// DefaultDatabaseNames are the databases every MongoDB server carries. The
// database listing can hide them on request.
var DefaultDatabaseNames = []string{"admin", "config", "local"}

// Config describes the primary location the gateway works against.
// Config values are compared with ==, which is how Initialize tells a repeated
// call from a conflicting one.
type Config struct {
	// MainDatabaseName must exist on the server at startup.
	MainDatabaseName string `yaml:"main_database_name" mapstructure:"main_database_name"`

	// MainCollectionName must exist inside MainDatabaseName at startup.
	MainCollectionName string `yaml:"main_collection_name" mapstructure:"main_collection_name"`

	// URL is a mongodb:// or mongodb+srv:// connection string.
	URL string `yaml:"url" mapstructure:"url"`

	// Timeout bounds server selection, connecting and the startup round trip.
	// Zero keeps the driver defaults.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// Validate checks the invariants of a usable configuration.
func (c Config) Validate() error {
	var errs []error
	if c.MainDatabaseName == "" {
		errs = append(errs, errors.New("main database name must not be empty"))
	}
	if c.MainCollectionName == "" {
		errs = append(errs, errors.New("main collection name must not be empty"))
	}
	if c.URL == "" {
		errs = append(errs, errors.New("url must not be empty"))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative, got %s", c.Timeout))
	}
	return errors.Join(errs...)
}
