package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sndot/internal/donor/importer"
	audit "sndot/pkg/platform/audit"
)

func newImportCmd(c *cli) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "import <file.json>",
		Short: "Register donors from a JSON array of {donor, intent} records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open import file: %w", err)
			}
			defer f.Close()
			records, err := importer.Decode(f)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer func() { _ = a.close(cmd.Context()) }()

			report, err := importer.New(a.registrar,
				importer.WithConcurrency(c.cfg.Registry.ImportConcurrency),
				importer.WithLogger(c.logger),
			).Run(cmd.Context(), records)
			if err != nil {
				return err
			}
			_ = a.publisher.Emit(cmd.Context(), audit.Event{
				Action: string(audit.EventImportCompleted),
				Reason: report.Summary(),
			})

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			for _, res := range report.Results {
				switch res.Outcome {
				case importer.OutcomeFailed:
					fmt.Fprintf(out, "#%d failed: %s %v\n", res.Index, res.Error, res.Fields)
				default:
					fmt.Fprintf(out, "#%d %s %s\n", res.Index, res.Outcome, res.DonorID)
				}
			}
			fmt.Fprintln(out, report.Summary())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}
