package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/theirongolddev/pmx/internal/clock"
	"github.com/theirongolddev/pmx/internal/config"
	"github.com/theirongolddev/pmx/internal/genai"
	"github.com/theirongolddev/pmx/internal/store"
	"github.com/theirongolddev/pmx/internal/workspace"

	"github.com/spf13/cobra"
)

var (
	flagVerbose bool
	flagOwner   string
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:          "pmx",
	Short:        "Project planning workspace",
	Long:         "Plan projects from the terminal: charters, risks, kanban board, schedule, and budget.",
	RunE:         runProjects,
	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging to stderr")
	rootCmd.PersistentFlags().StringVar(&flagOwner, "owner", "", "Act as this owner email (overrides PMX_OWNER and config)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default "+config.ConfigPath()+")")
}

func logLevel() slog.Level {
	if flagVerbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// newLogger builds the stderr text logger shared by every command.
func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel()}))
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig() (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if flagConfig != "" {
		cfg, err = config.LoadFrom(flagConfig)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return cfg, fmt.Errorf("loading config: %w", err)
	}
	if flagOwner != "" {
		// GetOwner reads PMX_OWNER first; the flag has to win over it.
		if err := os.Setenv("PMX_OWNER", flagOwner); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// openStore opens the configured project store.
func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	st, err := store.Open(ctx, store.Options{
		Driver:     cfg.Store.Driver,
		SQLitePath: config.GetDBPath(cfg),
		DSN:        config.GetDSN(cfg),
		Clock:      clock.System{},
	})
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return st, nil
}

// newLLM returns nil when no API key is configured.
func newLLM(cfg config.Config, logger *slog.Logger) *genai.Client {
	return genai.NewClient(config.GetAPIKey(cfg),
		genai.WithModel(cfg.LLM.Model),
		genai.WithBaseURL(cfg.LLM.BaseURL),
		genai.WithLogger(logger),
	)
}

// env bundles what most commands need.
type env struct {
	cfg   config.Config
	log   *slog.Logger
	st    store.Store
	owner string
}

func setup(ctx context.Context) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger()
	slog.SetDefault(logger)

	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	owner := config.GetOwner(cfg)
	logger.Debug("store opened", "driver", cfg.Store.Driver, "owner", owner)
	return &env{cfg: cfg, log: logger, st: st, owner: owner}, nil
}

func (e *env) Close() {
	if err := e.st.Close(); err != nil {
		e.log.Warn("closing store", "err", err)
	}
}

// openProject loads project id into an editing session. Saves from a CLI
// command are flushed explicitly, so the debounce delay is irrelevant.
func (e *env) openProject(ctx context.Context, id string) (*workspace.Session, error) {
	sess, err := workspace.Open(ctx, e.st, e.owner, id, workspace.Options{
		Delay:  config.AutosaveDelay(e.cfg),
		Logger: e.log,
	})
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", id, err)
	}
	return sess, nil
}

// commit flushes pending edits and closes the session.
func commit(ctx context.Context, sess *workspace.Session) error {
	if err := sess.Flush(ctx); err != nil {
		return fmt.Errorf("saving project: %w", err)
	}
	return sess.Close(ctx)
}
