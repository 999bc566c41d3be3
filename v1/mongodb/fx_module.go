package mongodb

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/satmeta/v1/observability"
)

// FXModule provides the gateway and ties its connection to the application
// lifecycle: Initialize on start, Close on stop. A failing Initialize aborts
// fx startup with the FatalError, which the entry point maps to an exit code.
var FXModule = fx.Module("mongodb",
	fx.Provide(
		NewMongoDBWithParams,
	),
	fx.Invoke(RegisterMongoDBLifecycle),
)

// MongoDBParams groups the dependencies of the gateway.
type MongoDBParams struct {
	fx.In

	Logger   Logger
	Observer observability.Observer `optional:"true"`
}

// NewMongoDBWithParams builds the gateway from fx parameters.
func NewMongoDBWithParams(p MongoDBParams) *MongoDB {
	return NewMongoDB(p.Logger, p.Observer)
}

// LifeCycleParams groups what RegisterMongoDBLifecycle needs.
type LifeCycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Client    *MongoDB
	Config    Config
}

// RegisterMongoDBLifecycle initializes the gateway on start and closes it on stop.
func RegisterMongoDBLifecycle(params LifeCycleParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return params.Client.Initialize(ctx, params.Config)
		},
		OnStop: func(ctx context.Context) error {
			if !params.Client.IsInitialized() {
				return nil
			}
			return params.Client.Close(ctx)
		},
	})
}
