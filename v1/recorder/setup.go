package recorder

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Aleph-Alpha/satmeta/v1/observability"
)

// ErrMissingURI is logged for delete messages without a usable uri.
var ErrMissingURI = errors.New("delete message has no uri")

// Logger is the logging surface of the recorder.
//
//go:generate mockgen -source=setup.go -destination=mock_logger.go -package=recorder
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

// Store is the part of *mongo.Collection the recorder writes through.
type Store interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

// Invalidator drops cached views of the recorded documents.
type Invalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
}

// Recorder applies bus messages to the main collection, one at a time.
type Recorder struct {
	store    Store
	logger   Logger
	observer observability.Observer

	cache     Invalidator
	cacheKeys []string
}

// NewRecorder returns a Recorder writing to store. observer may be nil.
func NewRecorder(store Store, logger Logger, observer observability.Observer) *Recorder {
	return &Recorder{store: store, logger: logger, observer: observer}
}

// WithCache makes the recorder invalidate keys in cache after every insert or
// delete that changed the collection.
func (r *Recorder) WithCache(cache Invalidator, keys ...string) *Recorder {
	r.cache = cache
	r.cacheKeys = keys
	return r
}
