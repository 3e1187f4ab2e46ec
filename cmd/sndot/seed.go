package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSeedOrgansCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-organs",
		Short: "Insert the organ catalog; names already present are skipped",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer func() { _ = a.close(cmd.Context()) }()

			results, err := a.registrar.SeedOrgans(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, res := range results {
				if res.Created {
					fmt.Fprintf(out, "created: %s\n", res.Name)
				} else {
					fmt.Fprintf(out, "already present: %s\n", res.Name)
				}
			}
			return nil
		},
	}
}
