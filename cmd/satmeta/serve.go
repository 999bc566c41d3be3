package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/satmeta/v1/api"
)

func newServeCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the query API over the recorded metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}
			return run(cmd.Context(),
				commonOptions(cfg),
				fx.Supply(cfg.API()),
				api.FXModule,
			)
		},
	}
}
