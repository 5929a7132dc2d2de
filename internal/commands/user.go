package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/auditlog"
	"github.com/cleared-dev/tally/internal/config"
	"github.com/cleared-dev/tally/internal/id"
	"github.com/cleared-dev/tally/internal/ledger"
	"github.com/cleared-dev/tally/internal/model"
	"github.com/cleared-dev/tally/internal/users"
)

func newUserCommand(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users and the session",
	}
	cmd.AddCommand(
		newUserAddCommand(g),
		newUserListCommand(g),
		newUserLoginCommand(g),
		newUserLogoutCommand(g),
		newUserUpdateCommand(g),
		newUserDeleteCommand(g),
	)
	return cmd
}

func newUserAddCommand(g *globalFlags) *cobra.Command {
	var name, password, role string

	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Register a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, g, func(ctx context.Context, e *env) error {
				// Anyone may register. Choosing a role takes an admin.
				actor, err := e.session(ctx)
				if err != nil && !errors.Is(err, errNoSession) {
					return err
				}
				if role != "" && !actor.IsAdmin() {
					return users.ErrForbidden
				}
				pw, confirm, err := passwordWithConfirm(cmd.ErrOrStderr(), password)
				if err != nil {
					return err
				}
				info, err := e.directory().Register(ctx, users.Registration{
					Username: args[0],
					Name:     name,
					Password: pw,
					Confirm:  confirm,
					Role:     model.Role(role),
				})
				if err != nil {
					return err
				}
				e.audit(actorName(actor, info.Username), auditlog.ActionUserAdd, info.Role.Label(), id.UserRef(info.Username))
				printSuccess(e.out, fmt.Sprintf("User %s registered (%s)", info.Username, info.Role.Label()))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name (default username)")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when empty)")
	cmd.Flags().StringVar(&role, "role", "", "admin or normal, admins only")

	return cmd
}

func actorName(actor ledger.UserContext, fallback string) string {
	if actor.Username != "" {
		return actor.Username
	}
	return fallback
}

func newUserListCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, g, func(ctx context.Context, e *env) error {
				all, err := e.directory().List(ctx)
				if err != nil {
					return err
				}
				var rows [][]string
				for _, u := range all {
					rows = append(rows, []string{u.Username, u.Name, u.Role.Label(), u.Registered})
				}
				printTable(e.out, []string{"Username", "Name", "Role", "Registered"}, rows)
				return nil
			})
		},
	}
}

func newUserLoginCommand(g *globalFlags) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Check a password and make the user the session user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, g, func(ctx context.Context, e *env) error {
				pw := password
				if pw == "" {
					var err error
					if pw, err = readPassword(cmd.ErrOrStderr(), "Password: "); err != nil {
						return err
					}
				}
				uc, err := e.directory().Authenticate(ctx, args[0], pw)
				if err != nil {
					return err
				}
				if err := config.Update(e.cfgPath, func(c *config.Config) { c.Session.User = uc.Username }); err != nil {
					return err
				}
				printSuccess(e.out, fmt.Sprintf("Logged in as %s (%s)", uc.Username, uc.Role.Label()))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "password (prompted when empty)")
	return cmd
}

func newUserLogoutCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the session user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, g, func(ctx context.Context, e *env) error {
				if err := config.Update(e.cfgPath, func(c *config.Config) { c.Session.User = "" }); err != nil {
					return err
				}
				printSuccess(e.out, "Logged out")
				return nil
			})
		},
	}
}

func newUserUpdateCommand(g *globalFlags) *cobra.Command {
	var newUsername, name, role, password string

	cmd := &cobra.Command{
		Use:   "update <username>",
		Short: "Rename a user or change its name, role or password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := args[0]
			if newUsername == "" {
				newUsername = username
			}
			return withEnv(cmd, g, func(ctx context.Context, e *env) error {
				actor, err := e.session(ctx)
				if err != nil {
					return err
				}
				info, err := e.directory().Update(ctx, actor, username, users.Update{
					NewUsername: newUsername,
					Name:        name,
					Role:        model.Role(role),
					Password:    password,
					Confirm:     password,
				})
				if err != nil {
					return err
				}
				if info.Username != username && e.cfg.Session.User == username {
					if err := config.Update(e.cfgPath, func(c *config.Config) { c.Session.User = info.Username }); err != nil {
						return err
					}
				}
				details := info.Role.Label()
				if info.Username != username {
					details = fmt.Sprintf("renamed from %s", username)
				}
				e.audit(actor.Username, auditlog.ActionUserUpdate, details, id.UserRef(info.Username))
				printSuccess(e.out, fmt.Sprintf("User %s updated", info.Username))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&newUsername, "new-username", "", "rename the user, moving all of its data")
	cmd.Flags().StringVar(&name, "name", "", "new display name")
	cmd.Flags().StringVar(&role, "role", "", "admin or normal")
	cmd.Flags().StringVar(&password, "password", "", "new password")

	return cmd
}

func newUserDeleteCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <username>",
		Short: "Delete a user and all of its data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, g, func(ctx context.Context, e *env) error {
				actor, err := e.session(ctx)
				if err != nil {
					return err
				}
				if err := e.directory().Delete(ctx, actor, args[0]); err != nil {
					return err
				}
				e.audit(actor.Username, auditlog.ActionUserDelete, "", id.UserRef(args[0]))
				printSuccess(e.out, fmt.Sprintf("User %s deleted", args[0]))
				return nil
			})
		},
	}
}
