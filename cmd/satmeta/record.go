package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/satmeta/v1/config"
	"github.com/Aleph-Alpha/satmeta/v1/kafka"
	"github.com/Aleph-Alpha/satmeta/v1/rabbit"
	"github.com/Aleph-Alpha/satmeta/v1/recorder"
)

func newRecordCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "record",
		Short: "Record messages from the subscriber into the main collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}
			return run(cmd.Context(),
				commonOptions(cfg),
				subscriberOptions(cfg),
				recorder.FXModule,
			)
		},
	}
}

// subscriberOptions wires the configured transport as the recorder's Source.
func subscriberOptions(cfg *config.AppConfig) fx.Option {
	if cfg.Subscriber.Transport == config.TransportKafka {
		return fx.Options(
			fx.Supply(cfg.Kafka()),
			kafka.FXModule,
			fx.Provide(recorder.FromKafka),
		)
	}
	return fx.Options(
		fx.Supply(cfg.Rabbit()),
		rabbit.FXModule,
		fx.Provide(recorder.FromRabbit),
	)
}
