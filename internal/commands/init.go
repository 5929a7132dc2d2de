package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/auditlog"
	"github.com/cleared-dev/tally/internal/config"
	"github.com/cleared-dev/tally/internal/id"
	"github.com/cleared-dev/tally/internal/users"
)

type initOptions struct {
	name     string
	password string
	backend  string
	dataDir  string
}

func newInitCommand(g *globalFlags) *cobra.Command {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the config file and register a user",
		Long: `Create the config file if it does not exist, register the user named by
--user and make it the session user. The first user registered in a store
becomes its administrator.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, g, opts)
		},
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "display name")
	cmd.Flags().StringVar(&opts.password, "password", "", "password (prompted when empty)")
	cmd.Flags().StringVar(&opts.backend, "backend", config.BackendFile, "storage backend: file, redis or postgres")
	cmd.Flags().StringVar(&opts.dataDir, "data-dir", "", "directory for imports and logs")

	return cmd
}

func runInit(cmd *cobra.Command, g *globalFlags, opts initOptions) error {
	if g.user == "" {
		return errors.New("pass --user with the username to register")
	}
	cfgPath, err := filepath.Abs(g.configPath)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	// An existing config is kept so init can point at a shared backend.
	_, err = os.Stat(cfgPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		cfg := config.Default()
		cfg.Storage.Backend = opts.backend
		if opts.dataDir != "" {
			cfg.DataDir = opts.dataDir
		}
		if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
			return fmt.Errorf("creating config dir: %w", err)
		}
		if err := config.Save(cfgPath, cfg); err != nil {
			return err
		}
	case err != nil:
		return fmt.Errorf("checking config: %w", err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	dirs := []string{
		cfg.DataDir,
		filepath.Join(cfg.DataDir, "import", "processed"),
		filepath.Join(cfg.DataDir, "logs"),
	}
	if cfg.Storage.Backend == config.BackendFile {
		dirs = append(dirs, filepath.Dir(cfg.Storage.Path))
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	e, err := newEnv(cmd, g, cfgPath, cfg)
	if err != nil {
		return err
	}
	defer e.Close()

	password, confirm, err := passwordWithConfirm(cmd.ErrOrStderr(), opts.password)
	if err != nil {
		return err
	}
	info, err := e.directory().Register(cmd.Context(), users.Registration{
		Username: g.user,
		Name:     opts.name,
		Password: password,
		Confirm:  confirm,
	})
	if err != nil {
		return err
	}
	e.audit(info.Username, auditlog.ActionUserAdd, "init "+info.Role.Label(), id.UserRef(info.Username))

	if err := config.Update(cfgPath, func(c *config.Config) { c.Session.User = info.Username }); err != nil {
		return err
	}

	printSuccess(e.out, fmt.Sprintf("Initialized tally at %s", cfgPath))
	printInfof(e.out, "Logged in as %s (%s)", info.Username, info.Role.Label())
	return nil
}
