package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/theirongolddev/pmx/internal/genai"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the project management assistant",
	Long:  "Asks a one-off question. Pass - to read the question from stdin.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")
	if question == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		question = string(data)
	}
	if strings.TrimSpace(question) == "" {
		return genai.ErrEmptyMessage
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	llm := newLLM(cfg, newLogger())
	if llm == nil {
		return genai.ErrNoAPIKey
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()
	reply, err := llm.Chat(ctx, question, nil)
	if err != nil {
		return err
	}
	fmt.Println(strings.TrimSpace(reply))
	return nil
}
