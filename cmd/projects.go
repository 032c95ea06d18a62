package cmd

import (
	"fmt"

	"github.com/theirongolddev/pmx/internal/cli"
	"github.com/theirongolddev/pmx/internal/workspace"

	"github.com/spf13/cobra"
)

var projectsCmd = &cobra.Command{
	Use:     "projects",
	Aliases: []string{"ls"},
	Short:   "List your projects",
	RunE:    runProjects,
}

func init() {
	rootCmd.AddCommand(projectsCmd)
}

func runProjects(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	projects, err := e.st.List(ctx, e.owner)
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		fmt.Println("\n  No projects yet. Create one with `pmx new <name>`.")
		return nil
	}

	stats := workspace.Summarize(projects)
	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("PROJECTS  %s", e.owner)))
	fmt.Println()

	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		tasks, pct := workspace.ProjectProgress(p)
		rows = append(rows, []string{
			p.ID,
			cli.Truncate(p.Name, 28),
			p.Type,
			cli.FormatNumber(int64(tasks)),
			cli.FormatPercent(pct),
			p.UpdatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  []string{"ID", "Name", "Type", "Tasks", "Done", "Updated"},
		Rows:     rows,
		LeftCols: 3,
	}))

	fmt.Printf("\n  %d projects  %d tasks  %d in progress  %s done  %d high risks\n",
		stats.Projects, stats.TotalTasks, stats.InProgress,
		cli.FormatPercent(stats.PercentDone()), stats.HighRisks)
	return nil
}
