package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/auditlog"
	"github.com/cleared-dev/tally/internal/settings"
)

func newThemeCommand(g *globalFlags) *cobra.Command {
	get := func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, g, func(ctx context.Context, e *env) error {
			theme, err := settings.New(e.store).Theme(ctx)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(e.out, theme)
			return nil
		})
	}

	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show or change the color theme",
		Args:  cobra.NoArgs,
		RunE:  get,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "get",
			Short: "Print the current theme",
			Args:  cobra.NoArgs,
			RunE:  get,
		},
		&cobra.Command{
			Use:       "set <light|dark>",
			Short:     "Set the theme",
			Args:      cobra.ExactArgs(1),
			ValidArgs: []string{settings.ThemeLight, settings.ThemeDark},
			RunE: func(cmd *cobra.Command, args []string) error {
				return withEnv(cmd, g, func(ctx context.Context, e *env) error {
					if err := settings.New(e.store).SetTheme(ctx, args[0]); err != nil {
						return err
					}
					e.applyTheme(ctx)
					e.audit(e.cfg.Session.User, auditlog.ActionThemeSet, args[0], "")
					printSuccess(e.out, "Theme set to "+args[0])
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "toggle",
			Short: "Switch between light and dark",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withEnv(cmd, g, func(ctx context.Context, e *env) error {
					theme, err := settings.New(e.store).ToggleTheme(ctx)
					if err != nil {
						return err
					}
					e.applyTheme(ctx)
					e.audit(e.cfg.Session.User, auditlog.ActionThemeSet, theme, "")
					printSuccess(e.out, "Theme set to "+theme)
					return nil
				})
			},
		},
	)
	return cmd
}
