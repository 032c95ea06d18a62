package cmd

import (
	"fmt"

	"github.com/theirongolddev/pmx/internal/cli"
	"github.com/theirongolddev/pmx/internal/plan"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Project summary: board, budget, timeline, risks",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
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

	f := sess.Form()
	fmt.Println()
	fmt.Println(cli.RenderTitle(f.Name))
	fmt.Println()
	fmt.Printf("  ID:          %s\n", sess.ID())
	fmt.Printf("  Type:        %s\n", orDash(f.Type))
	fmt.Printf("  Budget:      %s\n", cli.FormatCurrency(sess.TotalBudget()))
	fmt.Printf("  Duration:    %s\n", cli.FormatWeeks(int(f.Duration)))
	if f.Objective != "" {
		fmt.Printf("  Objective:   %s\n", f.Objective)
	}
	if f.Constraints != "" {
		fmt.Printf("  Constraints: %s\n", f.Constraints)
	}
	fmt.Println()

	c := sess.Board.Counts()
	fmt.Println("  [Board]")
	fmt.Printf("    To Do %d   In Progress %d   Done %d\n", c.Todo, c.InProgress, c.Done)
	if c.Total > 0 {
		fmt.Printf("    %s\n", cli.RenderProgressBar(c.Done, c.Total, 30))
	}
	fmt.Println()

	l := sess.Budget
	fmt.Println("  [Budget]")
	fmt.Printf("    Planned:   %s\n", cli.FormatCurrency(l.TotalPlanned()))
	fmt.Printf("    Actual:    %s\n", cli.FormatCurrency(l.TotalActual()))
	fmt.Printf("    Remaining: %s\n", cli.FormatCurrency(l.Remaining(sess.TotalBudget())))
	fmt.Printf("    Variance:  %s\n", cli.FormatVariance(l.Variance()))
	fmt.Println()

	tl := plan.BuildTimeline(sess.WBS(), int(f.Duration), f.Type)
	if tl.Static {
		fmt.Println("  [Timeline] (template, generate a plan for your own)")
	} else {
		fmt.Println("  [Timeline]")
	}
	fmt.Print(cli.RenderGantt(tl, 24))
	fmt.Println()

	if risks := sess.Risks(); len(risks) > 0 {
		rows := make([][]string, 0, len(risks))
		for _, r := range risks {
			rows = append(rows, []string{string(r.ID), cli.Truncate(r.Description, 40), r.Impact, r.Probability})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:    "Risks",
			Headers:  []string{"ID", "Risk", "Impact", "Probability"},
			Rows:     rows,
			LeftCols: 4,
		}))
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
