package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/export"
	"github.com/cleared-dev/tally/internal/ledger"
	"github.com/cleared-dev/tally/internal/model"
)

func newExportCommand(g *globalFlags) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every transaction to a CSV file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd, g, func(ctx context.Context, e *env, l *ledger.Ledger) error {
				rows := export.Rows(l.Accounts(), l.Transactions())
				if out == "-" {
					return export.WriteCSV(cmd.OutOrStdout(), rows)
				}
				path := out
				if path == "" {
					path = export.FileName(model.Today())
				}
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("creating export: %w", err)
				}
				if err := export.WriteCSV(f, rows); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("closing export: %w", err)
				}
				printSuccess(e.out, fmt.Sprintf("Exported %d transactions to %s", len(rows), path))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, - for stdout (default finanzas-<date>.csv)")
	return cmd
}
