package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runRm,
}

func init() {
	rootCmd.AddCommand(rmCmd)
}

func runRm(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.st.Delete(ctx, e.owner, args[0]); err != nil {
		return fmt.Errorf("project %s: %w", args[0], err)
	}
	fmt.Printf("  Deleted project %s\n", args[0])
	return nil
}
