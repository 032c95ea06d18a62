package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/pmx/internal/config"
	"github.com/theirongolddev/pmx/internal/gcal"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var flagGcalCalendar string

var gcalCmd = &cobra.Command{
	Use:   "gcal",
	Short: "Google Calendar sync",
}

var gcalAuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize pmx to write to your Google Calendar",
	RunE:  runGcalAuth,
}

var gcalPushCmd = &cobra.Command{
	Use:   "push <project>",
	Short: "Create or update the project's events in Google Calendar",
	Args:  cobra.ExactArgs(1),
	RunE:  runGcalPush,
}

func init() {
	gcalPushCmd.Flags().StringVar(&flagGcalCalendar, "calendar", "", "Calendar name (default from config)")

	gcalCmd.AddCommand(gcalAuthCmd, gcalPushCmd)
	rootCmd.AddCommand(gcalCmd)
}

func runGcalAuth(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	conf, err := gcal.OAuthConfig(config.GetCredentialsFile(cfg))
	if err != nil {
		return err
	}

	fmt.Println("  Open this URL, approve access, and paste the code below:")
	fmt.Println()
	fmt.Printf("  %s\n\n", gcal.AuthURL(conf))

	var code string
	err = huh.NewInput().
		Title("Authorization code").
		Value(&code).
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("code is required")
			}
			return nil
		}).
		Run()
	if err != nil {
		return err
	}

	tokenFile := config.GetTokenFile(cfg)
	if err := gcal.Exchange(cmd.Context(), conf, strings.TrimSpace(code), tokenFile); err != nil {
		return err
	}
	fmt.Printf("  Token saved to %s\n", tokenFile)
	return nil
}

func runGcalPush(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	name := flagGcalCalendar
	if name == "" {
		name = e.cfg.GoogleCalendar.Calendar
	}
	if name == "" {
		return errors.New("no calendar named: pass --calendar or set google_calendar.calendar")
	}

	p, err := e.st.Get(ctx, e.owner, args[0])
	if err != nil {
		return fmt.Errorf("project %s: %w", args[0], err)
	}
	if len(p.Schedule) == 0 {
		fmt.Println("  No events to push.")
		return nil
	}

	conf, err := gcal.OAuthConfig(config.GetCredentialsFile(e.cfg))
	if err != nil {
		return err
	}
	hc, err := gcal.HTTPClient(ctx, conf, config.GetTokenFile(e.cfg))
	if err != nil {
		return err
	}
	client, err := gcal.Connect(ctx, hc, name, e.log)
	if err != nil {
		return err
	}

	res, err := client.Push(ctx, p.Schedule)
	if err != nil {
		return err
	}
	fmt.Printf("  %s -> %s\n", p.Name, name)
	fmt.Printf("  Created %d  Updated %d  Unchanged %d", res.Created, res.Updated, res.Unchanged)
	if res.Failed > 0 {
		fmt.Printf("  Failed %d (see log)", res.Failed)
	}
	fmt.Println()
	if res.Failed > 0 {
		return fmt.Errorf("%d events failed to sync", res.Failed)
	}
	return nil
}
