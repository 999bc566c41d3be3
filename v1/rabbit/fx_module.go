package rabbit

import (
	"context"
	"sync"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/satmeta/v1/observability"
)

// FXModule provides *RabbitClient and Client, and keeps the connection alive
// for the lifetime of the application.
var FXModule = fx.Module("rabbit",
	fx.Provide(
		NewClientWithDI,
		func(r *RabbitClient) Client { return r },
	),
	fx.Invoke(RegisterRabbitLifecycle),
)

// RabbitParams groups the dependencies of the client.
type RabbitParams struct {
	fx.In

	Config   Config
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewClientWithDI builds the client from fx parameters.
func NewClientWithDI(params RabbitParams) (*RabbitClient, error) {
	return NewClient(params.Config, params.Logger, params.Observer)
}

// RabbitLifecycleParams groups what RegisterRabbitLifecycle needs.
type RabbitLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Client    *RabbitClient
}

// RegisterRabbitLifecycle runs RetryConnection in the background on start and
// shuts the client down on stop.
func RegisterRabbitLifecycle(params RabbitLifecycleParams) {
	wg := &sync.WaitGroup{}
	ctx, cancel := context.WithCancel(context.Background())

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			wg.Add(1)
			go func() {
				defer wg.Done()
				params.Client.RetryConnection(ctx)
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			params.Client.GracefulShutdown()
			cancel()
			wg.Wait()
			return nil
		},
	})
}

// GracefulShutdown stops the consumers and the reconnect loop, then closes the
// channel and the connection.
func (rb *RabbitClient) GracefulShutdown() {
	rb.closeShutdownOnce.Do(func() {
		close(rb.shutdownSignal)
	})

	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.logInfo(context.Background(), "Shutting down RabbitMQ client", nil)

	if rb.channel != nil {
		if err := rb.channel.Close(); err != nil {
			rb.logWarn(context.Background(), "Failed to close rabbit channel", map[string]interface{}{"error": err.Error()})
		}
		rb.channel = nil
	}
	if rb.conn != nil && !rb.conn.IsClosed() {
		if err := rb.conn.Close(); err != nil {
			rb.logWarn(context.Background(), "Failed to close rabbit connection", map[string]interface{}{"error": err.Error()})
		}
	}
}
