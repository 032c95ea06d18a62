package cmd

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/pmx/internal/config"
	"github.com/theirongolddev/pmx/internal/genai"
	"github.com/theirongolddev/pmx/internal/model"
	"github.com/theirongolddev/pmx/internal/workspace"

	"github.com/spf13/cobra"
)

// maxExtractFile matches the HTTP upload limit.
const maxExtractFile = 10 << 20

var flagExtractCreate bool

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Pull project details out of a document (PDF)",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

func init() {
	extractCmd.Flags().BoolVar(&flagExtractCreate, "create", false, "Create a project from the extracted fields")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	path := args[0]
	//nolint:gosec // the user names the file to read
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if len(data) > maxExtractFile {
		return fmt.Errorf("%s is larger than %d MB", path, maxExtractFile>>20)
	}

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

	fmt.Fprintf(os.Stderr, "  Reading %s...\n", filepath.Base(path))
	exCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	x, err := llm.ExtractFile(exCtx, data, mimeTypeOf(path, data))
	if err != nil {
		return fmt.Errorf("extracting: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Name:        %s\n", orDash(x.ProjectName))
	fmt.Printf("  Budget:      %s\n", orDash(x.Budget))
	fmt.Printf("  Duration:    %s\n", orDash(x.Duration))
	fmt.Printf("  Type:        %s\n", orDash(x.ProjectType))
	fmt.Printf("  Objective:   %s\n", orDash(x.Objective))
	fmt.Printf("  Constraints: %s\n", orDash(x.Constraints))

	if !flagExtractCreate {
		return nil
	}
	sess := workspace.New(e.st, e.owner, workspace.Options{
		Delay:  config.AutosaveDelay(e.cfg),
		Logger: e.log,
	})
	sess.SetForm(formFromExtracted(x))
	if err := commit(ctx, sess); err != nil {
		return err
	}
	fmt.Printf("\n  Created project %s\n", sess.ID())
	return nil
}

// formFromExtracted keeps only the leading number of the duration and maps
// an unknown project type to Other.
func formFromExtracted(x genai.Extracted) workspace.Form {
	f := workspace.Form{
		Name:        x.ProjectName,
		Budget:      x.Budget,
		Objective:   x.Objective,
		Constraints: x.Constraints,
		Type:        model.ProjectTypes[len(model.ProjectTypes)-1],
	}
	if fields := strings.Fields(x.Duration); len(fields) > 0 {
		if n, err := strconv.Atoi(fields[0]); err == nil && n > 0 {
			f.Duration = model.Weeks(n)
		}
	}
	for _, t := range model.ProjectTypes {
		if strings.EqualFold(t, strings.TrimSpace(x.ProjectType)) {
			f.Type = t
		}
	}
	return f
}

func mimeTypeOf(path string, data []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); t != "" {
		if i := strings.IndexByte(t, ';'); i >= 0 {
			t = t[:i]
		}
		return t
	}
	t := http.DetectContentType(data)
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = t[:i]
	}
	return t
}
