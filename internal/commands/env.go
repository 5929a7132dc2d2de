package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cleared-dev/tally/internal/auditlog"
	"github.com/cleared-dev/tally/internal/config"
	"github.com/cleared-dev/tally/internal/ledger"
	"github.com/cleared-dev/tally/internal/logging"
	"github.com/cleared-dev/tally/internal/settings"
	"github.com/cleared-dev/tally/internal/storage"
	"github.com/cleared-dev/tally/internal/users"
)

var errNoSession = errors.New("no active user: run tally user login <username> or pass --user")

// env is everything a command needs after the config is loaded.
type env struct {
	cfgPath string
	cfg     *config.Config
	store   storage.Store
	log     *logging.Logger
	out     io.Writer
	flags   *globalFlags
}

// openEnv loads the config named by --config and opens its store.
func openEnv(cmd *cobra.Command, g *globalFlags) (*env, error) {
	cfgPath, err := filepath.Abs(g.configPath)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	cfg, err := config.Load(cfgPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s not found: run tally init first", g.configPath)
	}
	if err != nil {
		return nil, err
	}
	return newEnv(cmd, g, cfgPath, cfg)
}

func newEnv(cmd *cobra.Command, g *globalFlags, cfgPath string, cfg *config.Config) (*env, error) {
	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Log.Level
	logCfg.Format = cfg.Log.Format
	log, err := logging.NewLogger(logCfg)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	store, err := storage.Open(cmd.Context(), cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", cfg.Storage.Backend, err)
	}
	log.Debug("storage opened", zap.String("backend", cfg.Storage.Backend))

	e := &env{
		cfgPath: cfgPath,
		cfg:     cfg,
		store:   store,
		log:     log,
		out:     cmd.OutOrStdout(),
		flags:   g,
	}
	e.applyTheme(cmd.Context())
	return e, nil
}

// applyTheme points lipgloss's adaptive colors at the stored theme.
func (e *env) applyTheme(ctx context.Context) {
	theme, err := settings.New(e.store).Theme(ctx)
	if err != nil {
		e.log.Warn("reading theme", zap.Error(err))
		return
	}
	lipgloss.SetHasDarkBackground(theme == settings.ThemeDark)
}

func (e *env) Close() {
	_ = e.log.Sync()
	if err := e.store.Close(); err != nil {
		e.log.Warn("closing storage", zap.Error(err))
	}
}

func (e *env) directory() *users.Directory {
	return users.NewDirectory(e.store, users.WithLogger(e.log))
}

// session resolves the acting user from --user or the config file.
func (e *env) session(ctx context.Context) (ledger.UserContext, error) {
	username := e.flags.user
	if username == "" {
		username = e.cfg.Session.User
	}
	if username == "" {
		return ledger.UserContext{}, errNoSession
	}
	info, err := e.directory().Get(ctx, username)
	if errors.Is(err, users.ErrUnknownUser) {
		return ledger.UserContext{}, fmt.Errorf("user %q is not registered", username)
	}
	if err != nil {
		return ledger.UserContext{}, err
	}
	return ledger.UserContext{Username: info.Username, Role: info.Role}, nil
}

func (e *env) openLedger(ctx context.Context) (*ledger.Ledger, error) {
	uc, err := e.session(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.Open(ctx, e.store, uc, ledger.WithLogger(e.log))
}

// audit records a mutation. Failures are logged, never returned.
func (e *env) audit(user, action, details, ref string) {
	entry := auditlog.Entry{
		Timestamp: time.Now(),
		User:      user,
		Action:    action,
		Details:   details,
		Ref:       ref,
	}
	if err := auditlog.Append(e.cfg.DataDir, []auditlog.Entry{entry}); err != nil {
		e.log.Warn("writing audit log", zap.Error(err))
	}
}

// withEnv opens the environment, runs fn and closes it.
func withEnv(cmd *cobra.Command, g *globalFlags, fn func(ctx context.Context, e *env) error) error {
	e, err := openEnv(cmd, g)
	if err != nil {
		return err
	}
	defer e.Close()
	return fn(cmd.Context(), e)
}

// withLedger is withEnv plus the session user's ledger.
func withLedger(cmd *cobra.Command, g *globalFlags, fn func(ctx context.Context, e *env, l *ledger.Ledger) error) error {
	return withEnv(cmd, g, func(ctx context.Context, e *env) error {
		l, err := e.openLedger(ctx)
		if err != nil {
			return err
		}
		return fn(ctx, e, l)
	})
}
