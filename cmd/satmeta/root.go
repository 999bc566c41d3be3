package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Aleph-Alpha/satmeta/v1/config"
	"github.com/Aleph-Alpha/satmeta/v1/mongodb"
)

const (
	configFlag      = "config"
	logLevelFlag    = "log-level"
	logLevelConf    = "logger.level"
	databaseURLFlag = "database-url"
	databaseURLConf = "database.url"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCommand() *cobra.Command {
	v := config.NewViper()

	root := &cobra.Command{
		Use:          "satmeta",
		Short:        "Record and query satellite file metadata",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.String(configFlag, "", "path to the YAML configuration file")
	flags.String(logLevelFlag, "", "log level: debug, info, warning or error")
	flags.String(databaseURLFlag, "", "MongoDB connection string")
	config.MustBindPFlag(v, logLevelConf, flags.Lookup(logLevelFlag))
	config.MustBindPFlag(v, databaseURLConf, flags.Lookup(databaseURLFlag))

	root.AddCommand(
		newServeCommand(v),
		newRecordCommand(v),
		newVersionCommand(),
	)
	return root
}

// loadConfig reads the file named by --config into v. Unreadable or invalid
// configuration exits with EIO.
func loadConfig(cmd *cobra.Command, v *viper.Viper) (*config.AppConfig, error) {
	path, err := cmd.Flags().GetString(configFlag)
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadFrom(v, path)
	if err != nil {
		return nil, &mongodb.FatalError{Err: err, Code: mongodb.ExitIO}
	}
	return cfg, nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
