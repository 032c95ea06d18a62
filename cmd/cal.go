package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/pmx/internal/cli"
	"github.com/theirongolddev/pmx/internal/model"

	"github.com/spf13/cobra"
)

var (
	flagCalMonth string
	flagEvtStart string
	flagEvtEnd   string
	flagEvtColor string
)

var calCmd = &cobra.Command{
	Use:   "cal",
	Short: "Project schedule",
}

var calShowCmd = &cobra.Command{
	Use:   "show <project>",
	Short: "Render a month with event days marked",
	Args:  cobra.ExactArgs(1),
	RunE:  runCalShow,
}

var calAddCmd = &cobra.Command{
	Use:   "add <project> <YYYY-MM-DD> <title>",
	Short: "Add an event",
	Args:  cobra.MinimumNArgs(3),
	RunE:  runCalAdd,
}

var calRmCmd = &cobra.Command{
	Use:   "rm <project> <event>",
	Short: "Delete an event",
	Args:  cobra.ExactArgs(2),
	RunE:  runCalRm,
}

var calDayCmd = &cobra.Command{
	Use:   "day <project> [YYYY-MM-DD]",
	Short: "List one day's events in time order (default today)",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runCalDay,
}

func init() {
	calShowCmd.Flags().StringVar(&flagCalMonth, "month", "", "Month to show as YYYY-MM (default current)")
	calAddCmd.Flags().StringVar(&flagEvtStart, "start", "", "Start time HH:MM")
	calAddCmd.Flags().StringVar(&flagEvtEnd, "end", "", "End time HH:MM")
	calAddCmd.Flags().StringVar(&flagEvtColor, "color", model.ColorAccent, "Color tag: "+strings.Join(model.ColorTags, ", "))

	calCmd.AddCommand(calShowCmd, calAddCmd, calRmCmd, calDayCmd)
	rootCmd.AddCommand(calCmd)
}

func runCalShow(cmd *cobra.Command, args []string) error {
	now := time.Now()
	year, month := now.Year(), now.Month()
	if flagCalMonth != "" {
		t, err := time.Parse("2006-01", flagCalMonth)
		if err != nil {
			return fmt.Errorf("--month %q: want YYYY-MM", flagCalMonth)
		}
		year, month = t.Year(), t.Month()
	}

	ctx := cmd.Context()
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	sess, err := e.openProject(ctx, args[0])
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close(ctx) }()

	events := sess.Schedule.Snapshot()
	fmt.Println()
	fmt.Print(cli.RenderMonthGrid(year, month, events, now))

	prefix := fmt.Sprintf("%04d-%02d-", year, int(month))
	n := 0
	for _, ev := range events {
		if strings.HasPrefix(ev.Date, prefix) {
			n++
		}
	}
	fmt.Printf("\n  %d events this month, %d total\n", n, sess.Schedule.Len())
	return nil
}

func runCalAdd(cmd *cobra.Command, args []string) error {
	date := args[1]
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("date %q: want YYYY-MM-DD", date)
	}
	if err := checkClock(flagEvtStart); err != nil {
		return fmt.Errorf("--start: %w", err)
	}
	if err := checkClock(flagEvtEnd); err != nil {
		return fmt.Errorf("--end: %w", err)
	}
	if flagEvtEnd != "" && flagEvtStart == "" {
		return errors.New("--end needs --start")
	}

	ctx := cmd.Context()
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	sess, err := e.openProject(ctx, args[0])
	if err != nil {
		return err
	}
	ev, ok := sess.AddEvent(date, strings.Join(args[2:], " "), flagEvtColor, flagEvtStart, flagEvtEnd)
	if !ok {
		_ = sess.Close(ctx)
		return errors.New("event title is empty")
	}
	if err := commit(ctx, sess); err != nil {
		return err
	}
	fmt.Printf("  Added %s on %s: %s\n", ev.ID, ev.Date, ev.Title)
	return nil
}

func runCalRm(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	sess, err := e.openProject(ctx, args[0])
	if err != nil {
		return err
	}
	if !sess.DeleteEvent(args[1]) {
		_ = sess.Close(ctx)
		return fmt.Errorf("event %s not found", args[1])
	}
	if err := commit(ctx, sess); err != nil {
		return err
	}
	fmt.Printf("  Deleted event %s\n", args[1])
	return nil
}

func runCalDay(cmd *cobra.Command, args []string) error {
	date := time.Now().Format("2006-01-02")
	if len(args) == 2 {
		if _, err := time.Parse("2006-01-02", args[1]); err != nil {
			return fmt.Errorf("date %q: want YYYY-MM-DD", args[1])
		}
		date = args[1]
	}

	ctx := cmd.Context()
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	sess, err := e.openProject(ctx, args[0])
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close(ctx) }()

	events := sess.Schedule.EventsForDate(date)
	if len(events) == 0 {
		fmt.Printf("\n  No events on %s.\n", date)
		return nil
	}

	rows := make([][]string, 0, len(events))
	for _, ev := range events {
		when := "all day"
		if ev.StartTime != "" {
			when = ev.StartTime
			if ev.EndTime != "" {
				when += "-" + ev.EndTime
			}
		}
		rows = append(rows, []string{ev.ID, when, ev.Title, ev.Color})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:    date,
		Headers:  []string{"ID", "Time", "Title", "Color"},
		Rows:     rows,
		LeftCols: 4,
	}))
	return nil
}

func checkClock(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse("15:04", s); err != nil {
		return fmt.Errorf("%q is not HH:MM", s)
	}
	return nil
}
