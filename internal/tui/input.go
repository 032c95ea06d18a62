package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/theirongolddev/pmx/internal/budget"
	"github.com/theirongolddev/pmx/internal/model"
	"github.com/theirongolddev/pmx/internal/schedule"
	"github.com/theirongolddev/pmx/internal/tui/components"
	"github.com/theirongolddev/pmx/internal/tui/theme"
	"github.com/theirongolddev/pmx/internal/workspace"
)

type promptKind int

const (
	promptNone promptKind = iota
	promptNewProject
	promptTask
	promptEvent
	promptBudgetItem
	promptBudgetActual
)

// promptState is the one-line input shown above the status bar while a tab
// collects text for an add or edit action.
type promptState struct {
	kind   promptKind
	label  string
	target string
	input  textinput.Model
}

func (p promptState) active() bool { return p.kind != promptNone }

func (a *App) startPrompt(kind promptKind, label, placeholder, value, target string) tea.Cmd {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = max(20, a.contentWidth()-6)
	ti.Placeholder = placeholder
	ti.SetValue(value)
	a.prompt = promptState{kind: kind, label: label, target: target, input: ti}
	return a.prompt.input.Focus()
}

func (a App) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.prompt = promptState{}
		return a, nil
	case "enter":
		p := a.prompt
		a.prompt = promptState{}
		return a.submitPrompt(p, strings.TrimSpace(p.input.Value()))
	}
	var cmd tea.Cmd
	a.prompt.input, cmd = a.prompt.input.Update(msg)
	return a, cmd
}

func (a App) submitPrompt(p promptState, val string) (tea.Model, tea.Cmd) {
	if p.kind == promptNewProject {
		if val == "" {
			return a, nil
		}
		a.openSession(nil)
		a.mutated(a.sess.SetForm(workspace.Form{Name: val, Type: model.ProjectTypes[0]}))
		a.activeTab = components.TabSettings
		a.note = "Created " + val + ". Fill in the details, then generate a plan on tab 5."
		return a, nil
	}
	if !a.requireProject() {
		return a, nil
	}

	switch p.kind {
	case promptTask:
		title, owner := parseTaskInput(val)
		_, ok := a.sess.AddTask(title, owner)
		a.mutated(ok)
	case promptEvent:
		in, ok := parseEventInput(val)
		if !ok {
			a.note = "Use: [HH:MM[-HH:MM]] title [#blue|#yellow|#red]"
			return a, nil
		}
		_, ok = a.sess.AddEvent(a.cal.dateKey(), in.title, in.color, in.start, in.end)
		a.mutated(ok)
	case promptBudgetItem:
		in, ok := parseBudgetInput(val)
		if !ok {
			a.note = "Use: category; description; planned[; actual]"
			return a, nil
		}
		_, ok = a.sess.AddBudgetItem(in.category, in.description, in.planned, in.actual)
		a.mutated(ok)
	case promptBudgetActual:
		it, found := a.sess.Budget.Item(p.target)
		if !found {
			return a, nil
		}
		it.Actual = budget.ParseAmount(val)
		a.mutated(a.sess.UpdateBudgetItem(it))
	}
	return a, nil
}

func (a App) renderPrompt(w int) string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true).Width(w).
		Render(" " + a.prompt.label + "  (Enter to save, Esc to cancel)")
	line := lipgloss.NewStyle().Background(t.Surface).Width(w).Render(" " + a.prompt.input.View())
	return label + "\n" + line
}

// parseTaskInput splits "Title words @owner@example.com" into a title and
// an optional owner email taken from a trailing @-prefixed word.
func parseTaskInput(s string) (title, owner string) {
	fields := strings.Fields(s)
	if n := len(fields); n > 1 && strings.HasPrefix(fields[n-1], "@") && len(fields[n-1]) > 1 {
		return strings.Join(fields[:n-1], " "), fields[n-1][1:]
	}
	return strings.TrimSpace(s), ""
}

type eventInput struct {
	title, color, start, end string
}

// parseEventInput reads "[HH:MM[-HH:MM]] title [#color]".
func parseEventInput(s string) (eventInput, bool) {
	fields := strings.Fields(s)
	var in eventInput
	if len(fields) > 0 {
		if start, end, ok := parseTimeRange(fields[0]); ok {
			in.start, in.end = start, end
			fields = fields[1:]
		}
	}
	if n := len(fields); n > 0 && strings.HasPrefix(fields[n-1], "#") {
		in.color = schedule.NormalizeColor(fields[n-1][1:])
		fields = fields[:n-1]
	}
	in.title = strings.Join(fields, " ")
	return in, in.title != ""
}

func parseTimeRange(s string) (start, end string, ok bool) {
	startStr, endStr, hasEnd := strings.Cut(s, "-")
	if _, err := time.Parse("15:04", startStr); err != nil {
		return "", "", false
	}
	if !hasEnd {
		return startStr, "", true
	}
	if _, err := time.Parse("15:04", endStr); err != nil {
		return "", "", false
	}
	return startStr, endStr, true
}

type budgetInput struct {
	category, description string
	planned, actual       float64
}

// parseBudgetInput reads "category; description; planned[; actual]".
func parseBudgetInput(s string) (budgetInput, bool) {
	parts := strings.Split(s, ";")
	if len(parts) < 3 {
		return budgetInput{}, false
	}
	in := budgetInput{
		category:    budget.NormalizeCategory(parts[0]),
		description: strings.TrimSpace(parts[1]),
		planned:     budget.ParseAmount(parts[2]),
	}
	if len(parts) > 3 {
		in.actual = budget.ParseAmount(parts[3])
	}
	return in, in.description != ""
}
