package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sndot/internal/platform/config"
	"sndot/internal/platform/logger"
)

// cli carries what every subcommand shares once PersistentPreRunE has run.
type cli struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:           "sndot",
		Short:         "Donor registry: validation and registration core",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(c.v, c.cfgFile)
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.logger = logger.New(cfg.Log.Level, cfg.Log.Format)
			slog.SetDefault(c.logger)
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&c.cfgFile, "config", "c", "", "config file (default: ./sndot.yaml or /etc/sndot/sndot.yaml)")
	flags.String("database-url", "", "PostgreSQL URL; empty runs on in-memory stores")
	flags.String("redis-url", "", "Redis URL for the donor cache")
	flags.StringSlice("kafka-brokers", nil, "Kafka brokers for audit events")
	flags.String("log-level", "", "debug, info, warn or error")
	flags.String("log-format", "", "json or text")
	_ = c.v.BindPFlag("database.url", flags.Lookup("database-url"))
	_ = c.v.BindPFlag("redis.url", flags.Lookup("redis-url"))
	_ = c.v.BindPFlag("kafka.brokers", flags.Lookup("kafka-brokers"))
	_ = c.v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = c.v.BindPFlag("log.format", flags.Lookup("log-format"))

	root.AddCommand(
		newServeCmd(c),
		newMigrateCmd(c),
		newSeedOrgansCmd(c),
		newImportCmd(c),
	)
	return root
}
