package api

import (
	"context"
	"errors"
	"net"
	"net/http"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/satmeta/v1/metrics"
	"github.com/Aleph-Alpha/satmeta/v1/mongodb"
	"github.com/Aleph-Alpha/satmeta/v1/redis"
	"github.com/Aleph-Alpha/satmeta/v1/tracer"
)

// FXModule provides *Server over the gateway and serves it for the lifetime
// of the application.
var FXModule = fx.Module("api",
	fx.Provide(NewServerWithDI),
	fx.Invoke(RegisterServerLifecycle),
)

// ServerParams groups the dependencies of the server.
type ServerParams struct {
	fx.In

	Config  Config
	Gateway *mongodb.MongoDB
	Logger  Logger
	Cache   redis.Cache              `optional:"true"`
	Tracer  *tracer.Tracer           `optional:"true"`
	Metrics metrics.MetricsCollector `optional:"true"`
}

func NewServerWithDI(p ServerParams) *Server {
	return NewServer(p.Config, p.Gateway, p.Cache, p.Logger, p.Tracer, p.Metrics)
}

// RegisterServerLifecycle listens on start, so an unusable address fails
// startup, and shuts the server down gracefully on stop.
func RegisterServerLifecycle(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Handler:      s.Handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			addr, err := s.cfg.Addr()
			if err != nil {
				return err
			}
			ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", addr)
			if err != nil {
				return err
			}
			s.logger.Info("Starting API server", nil, map[string]interface{}{"address": ln.Addr().String()})
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					s.logger.Error("API server stopped", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			s.logger.Info("Shutting down API server", nil)
			ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	})
}
