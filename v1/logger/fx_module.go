package logger

import (
	"context"

	"go.uber.org/fx"
)

// FXModule provides *Logger from a logger.Config in the container and flushes
// it when the application stops.
var FXModule = fx.Module("logger",
	fx.Provide(
		NewLoggerClient,
	),
	fx.Invoke(RegisterLoggerLifecycle),
)

// RegisterLoggerLifecycle syncs the zap logger on shutdown so buffered entries
// are not lost.
func RegisterLoggerLifecycle(lc fx.Lifecycle, client *Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			// stderr sync returns EINVAL on some platforms; nothing to flush there.
			_ = client.Zap.Sync()
			return nil
		},
	})
}
