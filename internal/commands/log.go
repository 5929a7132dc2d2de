package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/auditlog"
)

func newLogCommand(g *globalFlags) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the audit log of changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, g, func(ctx context.Context, e *env) error {
				actor, err := e.session(ctx)
				if err != nil {
					return err
				}
				entries, err := auditlog.Read(e.cfg.DataDir)
				if err != nil {
					return err
				}
				if !all || !actor.IsAdmin() {
					entries = auditlog.ForUser(entries, actor.Username)
				}
				rows := make([][]string, 0, len(entries))
				for _, en := range entries {
					rows = append(rows, []string{
						en.Timestamp.Local().Format("2006-01-02 15:04"),
						en.User,
						en.Action,
						en.Details,
						en.Ref,
					})
				}
				printTable(e.out, []string{"Time", "User", "Action", "Details", "Ref"}, rows)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "every user's entries (admins only)")
	return cmd
}
