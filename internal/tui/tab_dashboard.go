package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/theirongolddev/pmx/internal/cli"
	"github.com/theirongolddev/pmx/internal/tui/components"
	"github.com/theirongolddev/pmx/internal/tui/theme"
	"github.com/theirongolddev/pmx/internal/workspace"
)

type dashState struct {
	cursor  int
	confirm bool // delete confirmation pending for the row under the cursor
}

func (d *dashState) clamp(n int) {
	d.cursor = min(d.cursor, n-1)
	d.cursor = max(d.cursor, 0)
}

func (a App) updateDashboard(key string) (tea.Model, tea.Cmd) {
	if a.dash.confirm {
		a.dash.confirm = false
		if key == "y" && a.dash.cursor < len(a.projects) {
			p := a.projects[a.dash.cursor]
			if a.sess != nil && a.sess.ID() == p.ID {
				a.note = "Close the open project before deleting it"
				return a, nil
			}
			return a, deleteProjectCmd(a.st, a.owner, p.ID)
		}
		return a, nil
	}

	switch key {
	case "j", "down":
		a.dash.cursor++
		a.dash.clamp(len(a.projects))
	case "k", "up":
		a.dash.cursor--
		a.dash.clamp(len(a.projects))
	case "enter":
		if a.dash.cursor < len(a.projects) {
			return a, openProjectCmd(a.st, a.owner, a.projects[a.dash.cursor].ID)
		}
	case "n":
		cmd := a.startPrompt(promptNewProject, "New project name", "Riverside Fiber Rollout", "", "")
		return a, cmd
	case "x":
		if a.dash.cursor < len(a.projects) {
			a.dash.confirm = true
			a.note = fmt.Sprintf("Delete %q? y to confirm", a.projects[a.dash.cursor].Name)
		}
	case "r":
		return a, loadProjectsCmd(a.st, a.owner)
	}
	return a, nil
}

func (a App) renderDashboardTab(cw int) string {
	t := theme.Active
	s := a.stats
	var b strings.Builder

	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Projects", Value: cli.FormatNumber(int64(s.Projects))},
		{Label: "Tasks", Value: cli.FormatNumber(int64(s.TotalTasks)), Delta: fmt.Sprintf("%d in progress", s.InProgress)},
		{Label: "Completed", Value: cli.FormatPercent(s.PercentDone()), Delta: fmt.Sprintf("%d done", s.DoneTasks)},
		{Label: "High risks", Value: cli.FormatNumber(int64(s.HighRisks))},
	}, cw))
	b.WriteString("\n")

	inner := components.CardInnerWidth(cw)
	var body string
	switch {
	case !a.loaded:
		body = lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render("Loading projects…")
	case a.loadErr != nil:
		body = lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Render("Could not load projects: " + a.loadErr.Error())
	case len(a.projects) == 0:
		body = lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).
			Render("No projects yet. Press n to start one.")
	default:
		body = a.renderProjectRows(inner)
	}
	b.WriteString(components.ContentCard(fmt.Sprintf("Projects (%s)", a.owner), body, cw))
	return b.String()
}

func (a App) renderProjectRows(inner int) string {
	t := theme.Active

	const (
		typeW    = 14
		tasksW   = 6
		barW     = 16
		updatedW = 16
	)
	nameW := max(12, inner-typeW-tasksW-barW-5-updatedW-5)

	headStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	var b strings.Builder
	b.WriteString(headStyle.Render(fmt.Sprintf("%-*s %-*s %*s %-*s %-*s",
		nameW, "Name", typeW, "Type", tasksW, "Tasks", barW+5, "Progress", updatedW, "Updated")))

	for i, p := range a.projects {
		tasks, pct := workspace.ProjectProgress(p)
		name := cli.Truncate(p.Name, nameW)
		if a.sess != nil && a.sess.ID() == p.ID {
			name = cli.Truncate("● "+p.Name, nameW)
		}
		left := fmt.Sprintf("%-*s %-*s %*d", nameW, name, typeW, cli.Truncate(orDash(p.Type), typeW), tasksW, tasks)
		style := rowStyle
		if i == a.dash.cursor {
			style = selStyle
		}
		b.WriteString("\n")
		b.WriteString(style.Render(left))
		b.WriteString(space)
		b.WriteString(components.ProgressBar(float64(pct)/100, barW))
		b.WriteString(space)
		b.WriteString(dimStyle.Render(fmt.Sprintf("%-*s", updatedW, p.UpdatedAt.Local().Format("Jan 02 15:04"))))
	}
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("Enter open · n new · x delete · r reload"))
	return b.String()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}
