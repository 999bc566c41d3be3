package kafka

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/satmeta/v1/observability"
)

// FXModule provides *KafkaClient and Client and closes the client on stop.
var FXModule = fx.Module("kafka",
	fx.Provide(
		NewClientWithDI,
		func(k *KafkaClient) Client { return k },
	),
	fx.Invoke(RegisterKafkaLifecycle),
)

// KafkaParams groups the dependencies of the client.
type KafkaParams struct {
	fx.In

	Config   Config
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

func NewClientWithDI(params KafkaParams) (*KafkaClient, error) {
	return NewClient(params.Config, params.Logger, params.Observer)
}

// RegisterKafkaLifecycle shuts the client down when the application stops.
func RegisterKafkaLifecycle(lc fx.Lifecycle, client *KafkaClient) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			client.GracefulShutdown()
			return nil
		},
	})
}
