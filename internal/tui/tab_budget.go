package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/theirongolddev/pmx/internal/budget"
	"github.com/theirongolddev/pmx/internal/cli"
	"github.com/theirongolddev/pmx/internal/tui/components"
	"github.com/theirongolddev/pmx/internal/tui/theme"
)

type budgetState struct {
	cursor int
}

func (a App) updateBudget(key string) (tea.Model, tea.Cmd) {
	if !a.requireProject() {
		return a, nil
	}
	items := a.sess.Budget.Snapshot()
	switch key {
	case "j", "down":
		a.budget.cursor++
	case "k", "up":
		a.budget.cursor--
	case "a":
		cmd := a.startPrompt(promptBudgetItem, "New line item",
			"Labor; Field crew; 12,000; 0  (categories: "+strings.Join(budget.Categories, ", ")+")", "", "")
		return a, cmd
	case "e", "enter":
		if a.budget.cursor < len(items) {
			it := items[a.budget.cursor]
			cmd := a.startPrompt(promptBudgetActual, "Actual spend for "+it.Description, "0",
				fmt.Sprintf("%.2f", it.Actual), it.ID)
			return a, cmd
		}
	case "x", "delete":
		if a.budget.cursor < len(items) {
			a.mutated(a.sess.DeleteBudgetItem(items[a.budget.cursor].ID))
			items = a.sess.Budget.Snapshot()
		}
	}
	a.budget.cursor = max(0, min(a.budget.cursor, len(items)-1))
	return a, nil
}

func (a App) renderBudgetTab(cw int) string {
	t := theme.Active
	if a.sess == nil {
		return noProjectView(cw)
	}
	l := a.sess.Budget
	total := a.sess.TotalBudget()
	planned := l.TotalPlanned()
	actual := l.TotalActual()

	var b strings.Builder

	remainingDelta := ""
	if total > 0 {
		remainingDelta = cli.FormatPercent(budget.PercentOfBudget(actual, total)) + " spent"
	}
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Total budget", Value: cli.FormatCurrency(total)},
		{Label: "Planned", Value: cli.FormatCurrency(planned), Delta: cli.FormatPercent(budget.PercentOfBudget(planned, total)) + " of budget"},
		{Label: "Actual", Value: cli.FormatCurrency(actual)},
		{Label: "Remaining", Value: cli.FormatCurrency(l.Remaining(total)), Delta: remainingDelta},
		{Label: "Variance", Value: cli.FormatVariance(l.Variance())},
	}, cw))
	b.WriteString("\n")

	halves := components.LayoutRow(cw, 2)
	items := l.Snapshot()
	inner := components.CardInnerWidth(halves[0])

	head := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true)
	row := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	sel := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	const amtW, statusW, catW = 10, 9, 11
	descW := max(8, inner-catW-2*amtW-statusW-4)

	var list strings.Builder
	list.WriteString(head.Render(fmt.Sprintf("%-*s %-*s %*s %*s %-*s",
		catW, "Category", descW, "Description", amtW, "Planned", amtW, "Actual", statusW, "Status")))
	if len(items) == 0 {
		list.WriteString("\n")
		list.WriteString(dim.Render("No line items. Press a to add one."))
	}
	for i, it := range items {
		status := budget.Status(it)
		statusColor := t.Green
		switch status {
		case budget.StatusOver:
			statusColor = t.Red
		case budget.StatusOnBudget:
			statusColor = t.Accent
		}
		style := row
		if i == a.budget.cursor {
			style = sel
		}
		list.WriteString("\n")
		list.WriteString(style.Render(fmt.Sprintf("%-*s %-*s %*s %*s ",
			catW, cli.Truncate(it.Category, catW), descW, cli.Truncate(it.Description, descW),
			amtW, cli.FormatCurrency(it.Planned), amtW, cli.FormatCurrency(it.Actual))))
		list.WriteString(lipgloss.NewStyle().Foreground(statusColor).Background(t.Surface).
			Render(fmt.Sprintf("%-*s", statusW, status)))
	}
	itemsCard := components.ContentCard("Line items", list.String(), halves[0])

	var cats strings.Builder
	byCat := l.ByCategory()
	if len(byCat) == 0 {
		cats.WriteString(dim.Render("Nothing planned yet"))
	}
	barW := max(8, components.CardInnerWidth(halves[1])-catW-6)
	for i, c := range byCat {
		if i > 0 {
			cats.WriteString("\n")
		}
		cats.WriteString(components.SpendBar(c.Category, c.Actual, c.Planned, catW, barW))
	}
	catCard := components.ContentCard("Spend by category", cats.String(), halves[1])

	b.WriteString(components.CardRow([]string{itemsCard, catCard}))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Background).
		Render("j/k select · a add · e actual spend · x delete · budget total is set on Settings"))
	return b.String()
}
