package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/pmx/internal/config"
	"github.com/theirongolddev/pmx/internal/tui"
	"github.com/theirongolddev/pmx/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui [project]",
	Short: "Launch the interactive dashboard",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	theme.SetActive(e.cfg.Appearance.Theme)

	// stderr belongs to the alt screen while the dashboard runs.
	logPath := filepath.Join(config.DataDir(), "pmx-tui.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0o750); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	//nolint:gosec // log path is under the user's data dir
	logf, err := os.OpenFile(logPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open TUI log file: %w", err)
	}
	defer func() { _ = logf.Close() }()
	logger := slog.New(slog.NewTextHandler(logf, &slog.HandlerOptions{Level: logLevel()}))

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	opts := tui.Options{
		Store:      e.st,
		Config:     e.cfg,
		LLM:        newLLM(e.cfg, logger),
		Logger:     logger,
		NeedSetup:  flagConfig == "" && !config.Exists(),
		ConfigPath: flagConfig,
	}
	if len(args) == 1 {
		opts.ProjectID = args[0]
	}

	p := tea.NewProgram(tui.NewApp(opts), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	// Pending edits are still waiting for their quiet period.
	if app, ok := final.(tui.App); ok {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Close(closeCtx); err != nil {
			return fmt.Errorf("saving project: %w", err)
		}
	}
	return nil
}
