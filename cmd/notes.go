package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var notesCmd = &cobra.Command{
	Use:   "notes [text]",
	Short: "Show or replace your notes scratchpad (- reads stdin)",
	RunE:  runNotes,
}

func init() {
	rootCmd.AddCommand(notesCmd)
}

func runNotes(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	if len(args) == 0 {
		n, err := e.st.Note(ctx, e.owner)
		if err != nil {
			return err
		}
		if n.Content == "" {
			fmt.Println("  (no notes)")
			return nil
		}
		fmt.Println(n.Content)
		return nil
	}

	content := strings.Join(args, " ")
	if content == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		content = string(data)
	}
	n, err := e.st.SaveNote(ctx, e.owner, content)
	if err != nil {
		return err
	}
	fmt.Printf("  Notes saved (%d characters, %s)\n", len(n.Content), n.UpdatedAt.Local().Format("15:04:05"))
	return nil
}
