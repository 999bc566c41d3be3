package recorder

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/satmeta/v1/mongodb"
	"github.com/Aleph-Alpha/satmeta/v1/observability"
	"github.com/Aleph-Alpha/satmeta/v1/redis"
)

// FXModule provides *Recorder writing to the gateway's main collection and
// runs it against the provided Source for the lifetime of the application.
// If the source closes on its own the application is shut down.
var FXModule = fx.Module("recorder",
	fx.Provide(NewRecorderWithDI),
	fx.Invoke(RegisterRecorderLifecycle),
)

// RecorderParams groups the dependencies of the recorder.
type RecorderParams struct {
	fx.In

	Gateway  *mongodb.MongoDB
	Logger   Logger
	Observer observability.Observer `optional:"true"`
	Cache    redis.Cache            `optional:"true"`
}

// NewRecorderWithDI builds a recorder bound to the gateway. The collection is
// resolved on every call, so the recorder may be built before the gateway is
// initialized.
func NewRecorderWithDI(p RecorderParams) *Recorder {
	r := NewRecorder(gatewayStore{p.Gateway}, p.Logger, p.Observer)
	if p.Cache != nil {
		r.WithCache(p.Cache, redis.DistinctKeys...)
	}
	return r
}

type gatewayStore struct {
	gw *mongodb.MongoDB
}

func (s gatewayStore) collection() (*mongo.Collection, error) {
	coll := s.gw.MainCollection()
	if coll == nil {
		return nil, mongodb.Client.NotInitializedError
	}
	return coll, nil
}

func (s gatewayStore) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	coll, err := s.collection()
	if err != nil {
		return nil, err
	}
	return coll.InsertOne(ctx, document, opts...)
}

func (s gatewayStore) DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	coll, err := s.collection()
	if err != nil {
		return nil, err
	}
	return coll.DeleteMany(ctx, filter, opts...)
}

// RecorderLifecycleParams groups what RegisterRecorderLifecycle needs.
type RecorderLifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Recorder   *Recorder
	Source     Source
	Logger     Logger
}

// RegisterRecorderLifecycle starts Run on start and waits for it on stop.
func RegisterRecorderLifecycle(p RecorderLifecycleParams) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				err := p.Recorder.Run(ctx, p.Source)
				if ctx.Err() != nil {
					return
				}
				p.Logger.Warn("Recorder exited, shutting down", err)
				if err := p.Shutdowner.Shutdown(fx.ExitCode(1)); err != nil {
					p.Logger.Error("Failed to request shutdown", err)
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
