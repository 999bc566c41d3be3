package redis

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/satmeta/v1/observability"
)

// FXModule provides Cache. When Config.Enabled is false the cache is a
// NoopCache and no Redis connection is made.
var FXModule = fx.Module("redis",
	fx.Provide(NewCacheWithDI),
)

// RedisParams groups the dependencies of the cache.
type RedisParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    Config
	Logger    Logger                 `optional:"true"`
	Observer  observability.Observer `optional:"true"`
}

// NewCacheWithDI builds the cache and registers ping-on-start and
// close-on-stop hooks for the Redis-backed variant.
func NewCacheWithDI(params RedisParams) (Cache, error) {
	if !params.Config.Enabled {
		if params.Logger != nil {
			params.Logger.Info("Response cache disabled", nil)
		}
		return NoopCache{}, nil
	}

	client, err := NewClient(params.Config, params.Logger, params.Observer)
	if err != nil {
		return nil, err
	}
	RegisterRedisLifecycle(params.Lifecycle, client)
	return client, nil
}

// RegisterRedisLifecycle pings Redis on start and closes the client on stop.
// A failed ping is logged and tolerated since every lookup falls back to the store.
func RegisterRedisLifecycle(lc fx.Lifecycle, client *RedisClient) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx); err != nil {
				client.logWarn("Failed to ping Redis on startup", err, nil)
				return nil
			}
			client.logInfo("Redis cache started and healthy", nil)
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
}
