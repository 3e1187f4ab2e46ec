package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"sndot/internal/platform/postgres"
)

func newMigrateCmd(c *cli) *cobra.Command {
	var down bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.cfg.Database.URL == "" {
				return errors.New("database.url is required for migrate")
			}
			db, err := postgres.Open(cmd.Context(), postgres.Config{URL: c.cfg.Database.URL})
			if err != nil {
				return err
			}
			defer db.Close()

			if down {
				err = postgres.MigrateDown(db)
			} else {
				err = postgres.Migrate(db)
			}
			if err != nil {
				return err
			}
			version, dirty, err := postgres.Version(db)
			if err != nil {
				return err
			}
			c.logger.Info("schema migrated", "version", version, "dirty", dirty, "down", down)
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
			return nil
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "roll every migration back")
	return cmd
}
