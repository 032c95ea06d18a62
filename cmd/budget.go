package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/pmx/internal/budget"
	"github.com/theirongolddev/pmx/internal/cli"

	"github.com/spf13/cobra"
)

var (
	flagItemActual   string
	flagItemPlanned  string
	flagItemCategory string
	flagItemDesc     string
)

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Budget ledger",
}

var budgetShowCmd = &cobra.Command{
	Use:   "show <project>",
	Short: "Items, totals, and per-category spend",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudgetShow,
}

var budgetAddCmd = &cobra.Command{
	Use:   "add <project> <category> <planned> <description>",
	Short: "Add a line item",
	Args:  cobra.MinimumNArgs(4),
	RunE:  runBudgetAdd,
}

var budgetSetCmd = &cobra.Command{
	Use:   "set <project> <item>",
	Short: "Change an item's amounts, category, or description",
	Args:  cobra.ExactArgs(2),
	RunE:  runBudgetSet,
}

var budgetRmCmd = &cobra.Command{
	Use:   "rm <project> <item>",
	Short: "Delete a line item",
	Args:  cobra.ExactArgs(2),
	RunE:  runBudgetRm,
}

func init() {
	budgetAddCmd.Flags().StringVar(&flagItemActual, "actual", "", "Amount spent so far")

	budgetSetCmd.Flags().StringVar(&flagItemPlanned, "planned", "", "Planned amount")
	budgetSetCmd.Flags().StringVar(&flagItemActual, "actual", "", "Actual amount")
	budgetSetCmd.Flags().StringVar(&flagItemCategory, "category", "", "Category: "+strings.Join(budget.Categories, ", "))
	budgetSetCmd.Flags().StringVar(&flagItemDesc, "description", "", "Description")

	budgetCmd.AddCommand(budgetShowCmd, budgetAddCmd, budgetSetCmd, budgetRmCmd)
	rootCmd.AddCommand(budgetCmd)
}

func runBudgetShow(cmd *cobra.Command, args []string) error {
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

	l := sess.Budget
	items := l.Snapshot()
	total := sess.TotalBudget()

	fmt.Println()
	fmt.Println(cli.RenderTitle("BUDGET  " + sess.Form().Name))
	fmt.Println()
	fmt.Printf("  Total budget: %s\n", cli.FormatCurrency(total))
	fmt.Printf("  Planned:      %s (%s of budget)\n", cli.FormatCurrency(l.TotalPlanned()),
		cli.FormatPercent(budget.PercentOfBudget(l.TotalPlanned(), total)))
	fmt.Printf("  Actual:       %s (%s of budget)\n", cli.FormatCurrency(l.TotalActual()),
		cli.FormatPercent(budget.PercentOfBudget(l.TotalActual(), total)))
	fmt.Printf("  Remaining:    %s\n", cli.FormatCurrency(l.Remaining(total)))
	fmt.Println()

	if len(items) == 0 {
		fmt.Println("  No line items yet.")
		return nil
	}

	rows := make([][]string, 0, len(items)+2)
	for _, it := range items {
		rows = append(rows, []string{
			it.ID,
			it.Category,
			cli.Truncate(it.Description, 30),
			cli.FormatCurrency(it.Planned),
			cli.FormatCurrency(it.Actual),
			cli.FormatVariance(it.Planned - it.Actual),
			budget.Status(it),
		})
	}
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{
		"", "Total", "",
		cli.FormatCurrency(l.TotalPlanned()),
		cli.FormatCurrency(l.TotalActual()),
		cli.FormatVariance(l.Variance()),
		"",
	})
	fmt.Print(cli.RenderTable(cli.Table{
		Title:    "Line Items",
		Headers:  []string{"ID", "Category", "Description", "Planned", "Actual", "Variance", "Status"},
		Rows:     rows,
		LeftCols: 3,
	}))
	fmt.Println()

	cats := l.ByCategory()
	maxPlanned := 0.0
	for _, c := range cats {
		maxPlanned = max(maxPlanned, c.Planned, c.Actual)
	}
	fmt.Println("  By category (actual)")
	for _, c := range cats {
		label := fmt.Sprintf("%-12s %s / %s", c.Category, cli.FormatCurrency(c.Actual), cli.FormatCurrency(c.Planned))
		fmt.Println(cli.RenderHorizontalBar(label, c.Actual, maxPlanned, 30))
	}
	return nil
}

func runBudgetAdd(cmd *cobra.Command, args []string) error {
	planned := budget.ParseAmount(args[2])
	if planned == 0 && strings.Trim(args[2], "0.,$ ") != "" {
		return fmt.Errorf("planned amount %q is not a number", args[2])
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
	it, ok := sess.AddBudgetItem(args[1], strings.Join(args[3:], " "), planned, budget.ParseAmount(flagItemActual))
	if !ok {
		_ = sess.Close(ctx)
		return errors.New("description is empty")
	}
	if err := commit(ctx, sess); err != nil {
		return err
	}
	fmt.Printf("  Added %s: %s %s planned %s\n", it.ID, it.Category, it.Description, cli.FormatCurrency(it.Planned))
	return nil
}

func runBudgetSet(cmd *cobra.Command, args []string) error {
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
	it, ok := sess.Budget.Item(args[1])
	if !ok {
		_ = sess.Close(ctx)
		return fmt.Errorf("budget item %s not found", args[1])
	}

	flags := cmd.Flags()
	if flags.Changed("planned") {
		it.Planned = budget.ParseAmount(flagItemPlanned)
	}
	if flags.Changed("actual") {
		it.Actual = budget.ParseAmount(flagItemActual)
	}
	if flags.Changed("category") {
		it.Category = flagItemCategory
	}
	if flags.Changed("description") {
		it.Description = flagItemDesc
	}
	if !sess.UpdateBudgetItem(it) {
		_ = sess.Close(ctx)
		fmt.Printf("  %s unchanged\n", it.ID)
		return nil
	}
	if err := commit(ctx, sess); err != nil {
		return err
	}
	it, _ = sess.Budget.Item(args[1])
	fmt.Printf("  %s: planned %s, actual %s (%s)\n", it.ID,
		cli.FormatCurrency(it.Planned), cli.FormatCurrency(it.Actual), budget.Status(it))
	return nil
}

func runBudgetRm(cmd *cobra.Command, args []string) error {
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
	if !sess.DeleteBudgetItem(args[1]) {
		_ = sess.Close(ctx)
		return fmt.Errorf("budget item %s not found", args[1])
	}
	if err := commit(ctx, sess); err != nil {
		return err
	}
	fmt.Printf("  Deleted budget item %s\n", args[1])
	return nil
}
