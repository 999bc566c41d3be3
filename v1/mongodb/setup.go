package mongodb

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Aleph-Alpha/satmeta/v1/observability"
)

// Logger is the logging surface the gateway needs.
//
//go:generate mockgen -source=setup.go -destination=mock_logger.go -package=mongodb
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

// MongoDB is the single owner of the connection to the document store.
//
// The client and the active configuration are either both set or both unset;
// the resolved main database and collection are set and cleared with them.
// Initialize and Close are expected at process start and stop. The mutex only
// protects the state fields, store round trips run outside of it.
type MongoDB struct {
	mu         sync.RWMutex
	client     *mongo.Client
	cfg        *Config
	database   *mongo.Database
	collection *mongo.Collection

	logger   Logger
	observer observability.Observer
}

// NewMongoDB returns an uninitialized gateway. observer may be nil.
func NewMongoDB(logger Logger, observer observability.Observer) *MongoDB {
	return &MongoDB{logger: logger, observer: observer}
}

// Initialize connects to the store described by cfg and checks that the main
// database and collection exist.
//
// Calling it again with the same configuration is a logged no-op. A different
// configuration, or state where only one of client and configuration is set,
// is a FatalError. Connection failures carry ExitIO, a missing database or
// collection ExitDataAbsent. The client is disconnected on every failure path.
func (m *MongoDB) Initialize(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fatal(Client.InvalidConfigError.WithExtra(err), ExitIO)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case m.client != nil && m.cfg != nil:
		if *m.cfg == cfg {
			m.logger.Warn(Client.AlreadyOpenError.Error(), nil, map[string]interface{}{
				"database":   cfg.MainDatabaseName,
				"collection": cfg.MainCollectionName,
			})
			return nil
		}
		return fatal(Client.ReinitializeConfigError, ExitMisuse)
	case m.client != nil || m.cfg != nil:
		return fatal(Client.InconsistencyError, ExitMisuse)
	}

	m.logger.Info("Connecting to MongoDB", nil, map[string]interface{}{
		"database":   cfg.MainDatabaseName,
		"collection": cfg.MainCollectionName,
		"timeout":    cfg.Timeout.String(),
	})

	client, err := mongo.Connect(ctx, clientOptions(cfg))
	if err != nil {
		return fatal(Client.ConnectionError.WithExtra(cfg.URL), ExitIO)
	}

	database, collection, err := m.checkExistence(ctx, client, cfg)
	if err != nil {
		disconnectCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if derr := client.Disconnect(disconnectCtx); derr != nil {
			m.logger.Debug("disconnect after failed initialization", derr, nil)
		}
		m.logger.Error("MongoDB initialization failed", err, nil)
		return err
	}

	stored := cfg
	m.client = client
	m.cfg = &stored
	m.database = database
	m.collection = collection

	m.logger.Info("Connected to MongoDB", nil, map[string]interface{}{
		"database":   cfg.MainDatabaseName,
		"collection": cfg.MainCollectionName,
	})
	return nil
}

// checkExistence forces the first round trip and resolves the main database and collection.
func (m *MongoDB) checkExistence(ctx context.Context, client *mongo.Client, cfg Config) (*mongo.Database, *mongo.Collection, error) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	names, err := client.ListDatabaseNames(ctx, bson.D{})
	m.observeOperation("list_databases", "", "", time.Since(start), err, int64(len(names)))
	if err != nil {
		return nil, nil, fatal(Client.ConnectionError.WithExtra(cfg.URL), ExitIO)
	}
	if !slices.Contains(names, cfg.MainDatabaseName) {
		return nil, nil, fatal(Databases.NotFoundError.WithExtra(cfg.MainDatabaseName), ExitDataAbsent)
	}

	database := client.Database(cfg.MainDatabaseName)

	start = time.Now()
	collections, err := database.ListCollectionNames(ctx, bson.D{})
	m.observeOperation("list_collections", cfg.MainDatabaseName, "", time.Since(start), err, int64(len(collections)))
	if err != nil {
		return nil, nil, fatal(Client.ConnectionError.WithExtra(cfg.URL), ExitIO)
	}
	if !slices.Contains(collections, cfg.MainCollectionName) {
		return nil, nil, fatal(Collections.NotFoundError.WithExtra(cfg.MainCollectionName), ExitDataAbsent)
	}

	return database, database.Collection(cfg.MainCollectionName), nil
}

func clientOptions(cfg Config) *options.ClientOptions {
	opts := options.Client().ApplyURI(cfg.URL)
	if cfg.Timeout > 0 {
		opts.SetServerSelectionTimeout(cfg.Timeout)
		opts.SetConnectTimeout(cfg.Timeout)
	}
	return opts
}

// Close disconnects the client and clears the gateway state. Closing a gateway
// that was never initialized returns Client.CloseNotAllowedError. The state is
// cleared even when the driver reports a disconnect error, which is returned.
func (m *MongoDB) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client == nil {
		return Client.CloseNotAllowedError
	}

	err := m.client.Disconnect(ctx)
	m.client = nil
	m.cfg = nil
	m.database = nil
	m.collection = nil

	if err != nil {
		m.logger.Error("error while disconnecting from MongoDB", err, nil)
		return err
	}
	m.logger.Info("MongoDB connection closed", nil, nil)
	return nil
}

// IsInitialized reports whether a live connection is held. It performs no I/O.
func (m *MongoDB) IsInitialized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client != nil && m.cfg != nil
}

// Config returns the active configuration and whether there is one.
func (m *MongoDB) Config() (Config, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cfg == nil {
		return Config{}, false
	}
	return *m.cfg, true
}

// Client returns the live driver client, or nil.
func (m *MongoDB) Client() *mongo.Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client
}

// MainDatabase returns the database resolved at initialization, or nil.
func (m *MongoDB) MainDatabase() *mongo.Database {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.database
}

// MainCollection returns the collection resolved at initialization, or nil.
func (m *MongoDB) MainCollection() *mongo.Collection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collection
}

type snapshot struct {
	client     *mongo.Client
	database   *mongo.Database
	collection *mongo.Collection
}

func (m *MongoDB) live() (snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.client == nil || m.cfg == nil {
		return snapshot{}, Client.NotInitializedError
	}
	return snapshot{client: m.client, database: m.database, collection: m.collection}, nil
}
