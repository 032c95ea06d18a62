package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/theirongolddev/pmx/internal/genai"

	"github.com/spf13/cobra"
)

var flagGenerateYes bool

var generateCmd = &cobra.Command{
	Use:   "generate <project>",
	Short: "Generate a charter, risk register, and work breakdown",
	Long: "Sends the project brief to the language model and stores the charter, risks, " +
		"breakdown, and starter tasks. The board is replaced with the starter tasks.",
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().BoolVarP(&flagGenerateYes, "yes", "y", false, "Replace a board that already has tasks")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	llm := newLLM(e.cfg, e.log)
	if llm == nil {
		return genai.ErrNoAPIKey
	}

	sess, err := e.openProject(ctx, args[0])
	if err != nil {
		return err
	}
	if n := sess.Board.Counts().Total; n > 0 && !flagGenerateYes {
		_ = sess.Close(ctx)
		return fmt.Errorf("the board has %d tasks that a new plan would replace; pass --yes to continue", n)
	}

	f := sess.Form()
	brief := genai.Brief{
		ProjectName: f.Name,
		Budget:      f.Budget,
		Duration:    f.Duration,
		ProjectType: f.Type,
		Objective:   f.Objective,
		Constraints: f.Constraints,
	}

	fmt.Fprintf(os.Stderr, "  Generating plan with %s...\n", llm.Model())
	genCtx, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()
	start := time.Now()
	g, err := llm.GenerateCharter(genCtx, brief)
	if err != nil {
		_ = sess.Close(ctx)
		return fmt.Errorf("generating plan: %w", err)
	}
	e.log.Debug("plan generated", "elapsed", time.Since(start).Round(time.Millisecond))

	sess.ApplyPlan(g)
	if err := commit(ctx, sess); err != nil {
		return err
	}

	fmt.Printf("  %s\n", sess.Form().Name)
	fmt.Printf("  Charter:  %d characters\n", len(g.Charter))
	fmt.Printf("  Risks:    %d\n", len(g.Risks))
	fmt.Printf("  Phases:   %d\n", len(g.WBS))
	fmt.Printf("  Tasks:    %d added to To Do\n", sess.Board.Counts().Todo)
	fmt.Printf("\n  Review it with `pmx show %s`.\n", sess.ID())
	return nil
}
