package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/pmx/internal/config"
	"github.com/theirongolddev/pmx/internal/model"
	"github.com/theirongolddev/pmx/internal/workspace"

	"github.com/spf13/cobra"
)

var (
	flagNewBudget      string
	flagNewWeeks       int
	flagNewType        string
	flagNewObjective   string
	flagNewConstraints string
)

var newCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create a blank project",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runNew,
}

func init() {
	newCmd.Flags().StringVar(&flagNewBudget, "budget", "", "Total budget, e.g. 150,000")
	newCmd.Flags().IntVar(&flagNewWeeks, "weeks", 0, "Duration in weeks")
	newCmd.Flags().StringVar(&flagNewType, "type", model.ProjectTypes[0], "Project type: "+strings.Join(model.ProjectTypes, ", "))
	newCmd.Flags().StringVar(&flagNewObjective, "objective", "", "What the project must achieve")
	newCmd.Flags().StringVar(&flagNewConstraints, "constraints", "", "Known constraints")
	rootCmd.AddCommand(newCmd)
}

func runNew(cmd *cobra.Command, args []string) error {
	if flagNewWeeks < 0 {
		return fmt.Errorf("--weeks must not be negative")
	}
	ctx := cmd.Context()
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	sess := workspace.New(e.st, e.owner, workspace.Options{
		Delay:  config.AutosaveDelay(e.cfg),
		Logger: e.log,
	})
	sess.SetForm(workspace.Form{
		Name:        strings.Join(args, " "),
		Budget:      flagNewBudget,
		Duration:    model.Weeks(flagNewWeeks),
		Type:        flagNewType,
		Objective:   flagNewObjective,
		Constraints: flagNewConstraints,
	})
	if err := commit(ctx, sess); err != nil {
		return err
	}

	fmt.Printf("  Created project %s (%s)\n", sess.ID(), sess.Form().Name)
	return nil
}
