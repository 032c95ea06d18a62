// Package cmd implements the pmx CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/pmx/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := config.ConfigPath()
	if flagConfig != "" {
		path = flagConfig
	}
	fmt.Printf("  Config file: %s\n", path)
	if _, err := os.Stat(path); err == nil {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Owner:          %s\n", config.GetOwner(cfg))
	fmt.Printf("    Autosave delay: %s\n", config.AutosaveDelay(cfg))
	fmt.Println()

	fmt.Println("  [Store]")
	fmt.Printf("    Driver: %s\n", cfg.Store.Driver)
	switch cfg.Store.Driver {
	case "postgres":
		if config.GetDSN(cfg) != "" {
			fmt.Println("    DSN:    configured")
		} else {
			fmt.Println("    DSN:    not configured")
		}
	default:
		fmt.Printf("    Path:   %s\n", config.GetDBPath(cfg))
	}
	fmt.Println()

	fmt.Println("  [LLM]")
	if key := config.GetAPIKey(cfg); key != "" {
		fmt.Printf("    API key:  %s\n", maskAPIKey(key))
	} else {
		fmt.Println("    API key:  not configured")
	}
	fmt.Printf("    Model:    %s\n", cfg.LLM.Model)
	if cfg.LLM.BaseURL != "" {
		fmt.Printf("    Base URL: %s\n", cfg.LLM.BaseURL)
	}
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address: %s\n", config.GetAddr(cfg))
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Google Calendar]")
	fmt.Printf("    Calendar:    %s\n", orDash(cfg.GoogleCalendar.Calendar))
	fmt.Printf("    Credentials: %s\n", config.GetCredentialsFile(cfg))
	fmt.Printf("    Token:       %s\n", config.GetTokenFile(cfg))
	fmt.Println()

	fmt.Println("  Run `pmx setup` to reconfigure.")
	return nil
}
