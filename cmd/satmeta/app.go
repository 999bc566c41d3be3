package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/Aleph-Alpha/satmeta/v1/api"
	"github.com/Aleph-Alpha/satmeta/v1/config"
	"github.com/Aleph-Alpha/satmeta/v1/kafka"
	"github.com/Aleph-Alpha/satmeta/v1/logger"
	"github.com/Aleph-Alpha/satmeta/v1/metrics"
	"github.com/Aleph-Alpha/satmeta/v1/mongodb"
	"github.com/Aleph-Alpha/satmeta/v1/rabbit"
	"github.com/Aleph-Alpha/satmeta/v1/recorder"
	"github.com/Aleph-Alpha/satmeta/v1/redis"
	"github.com/Aleph-Alpha/satmeta/v1/tracer"
)

// commonOptions are shared by every command: logging, metrics, tracing, the
// gateway and the cache.
func commonOptions(cfg *config.AppConfig) fx.Option {
	return fx.Options(
		fx.Supply(
			cfg.Logger(),
			cfg.Metrics(),
			cfg.Tracer(),
			cfg.MongoDB(),
			cfg.Redis(),
		),
		logger.FXModule,
		fx.WithLogger(func(l *logger.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Zap.Named("fx")}
		}),
		fx.Provide(
			func(l *logger.Logger) mongodb.Logger { return l },
			func(l *logger.Logger) metrics.Logger { return l },
			func(l *logger.Logger) tracer.Logger { return l },
			func(l *logger.Logger) redis.Logger { return l },
			func(l *logger.Logger) rabbit.Logger { return l },
			func(l *logger.Logger) kafka.Logger { return l },
			func(l *logger.Logger) recorder.Logger { return l },
			func(l *logger.Logger) api.Logger { return l },
		),
		metrics.FXModule,
		tracer.FXModule,
		mongodb.FXModule,
		redis.FXModule,
	)
}

// run starts the application, blocks until it is signalled or asks to shut
// down, and stops it. A non-zero shutdown exit code is returned as a
// FatalError carrying that code.
func run(ctx context.Context, opts ...fx.Option) error {
	app := fx.New(opts...)
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(context.Background(), app.StartTimeout())
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}

	var sig fx.ShutdownSignal
	select {
	case sig = <-app.Wait():
	case <-ctx.Done():
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancel()
	stopErr := app.Stop(stopCtx)

	if sig.ExitCode != 0 {
		return &mongodb.FatalError{
			Err:  errors.Join(fmt.Errorf("shut down with exit code %d", sig.ExitCode), stopErr),
			Code: sig.ExitCode,
		}
	}
	return stopErr
}
