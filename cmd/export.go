package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/theirongolddev/pmx/internal/export"

	"github.com/spf13/cobra"
)

var (
	flagExportOut string
	flagImportTo  string
)

var exportCmd = &cobra.Command{
	Use:   "export <project>",
	Short: "Write a project as YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Create a project from an exported YAML file (- for stdin)",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportOut, "output", "o", "", "Write to file instead of stdout")
	importCmd.Flags().StringVar(&flagImportTo, "into", "", "Overwrite this existing project instead of creating one")
	rootCmd.AddCommand(exportCmd, importCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	p, err := e.st.Get(ctx, e.owner, args[0])
	if err != nil {
		return fmt.Errorf("project %s: %w", args[0], err)
	}

	var w io.Writer = os.Stdout
	if flagExportOut != "" {
		f, err := os.Create(flagExportOut)
		if err != nil {
			return fmt.Errorf("creating %s: %w", flagExportOut, err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}
	if err := export.Write(w, p, time.Now()); err != nil {
		return err
	}
	if flagExportOut != "" {
		fmt.Fprintf(os.Stderr, "  Exported %s to %s\n", p.ID, flagExportOut)
	}
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	var r io.Reader = os.Stdin
	if args[0] != "-" {
		//nolint:gosec // the user names the file to read
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening %s: %w", args[0], err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	doc, err := export.Read(r)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	p, err := e.st.Save(ctx, e.owner, flagImportTo, doc.Project.ProjectFields)
	if err != nil {
		return fmt.Errorf("importing: %w", err)
	}
	verb := "Imported"
	if flagImportTo != "" {
		verb = "Replaced"
	}
	fmt.Printf("  %s %s (%s), exported %s\n", verb, p.ID, p.Name, doc.ExportedAt.Local().Format("2006-01-02 15:04"))
	return nil
}
