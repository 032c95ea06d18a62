package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/theirongolddev/pmx/internal/cli"
	"github.com/theirongolddev/pmx/internal/genai"
	"github.com/theirongolddev/pmx/internal/model"
	"github.com/theirongolddev/pmx/internal/plan"
	"github.com/theirongolddev/pmx/internal/tui/components"
	"github.com/theirongolddev/pmx/internal/tui/theme"
)

type planState struct {
	cursor int // index into the flattened breakdown items
	scroll int
}

// wbsItems flattens the active breakdown into its items, in display order.
func wbsItems(phases []model.Phase) []string {
	var out []string
	for _, p := range phases {
		out = append(out, p.Items...)
	}
	return out
}

func (a App) updatePlan(key string) (tea.Model, tea.Cmd) {
	if !a.requireProject() {
		return a, nil
	}
	phases, static := plan.ActiveWBS(a.sess.WBS())
	items := wbsItems(phases)

	switch key {
	case "j", "down":
		a.plan.cursor = min(a.plan.cursor+1, len(items)-1)
	case "k", "up":
		a.plan.cursor = max(a.plan.cursor-1, 0)
	case "J", "ctrl+d":
		a.plan.scroll += max(1, (a.height-6)/2)
	case "K", "ctrl+u":
		a.plan.scroll = max(0, a.plan.scroll-max(1, (a.height-6)/2))
	case "enter", "+":
		if static {
			a.note = "Generate a plan first (g); the sample breakdown cannot be sent to the board"
			return a, nil
		}
		if a.plan.cursor < len(items) {
			item := items[a.plan.cursor]
			if _, ok := a.sess.AddWBSItem(item); ok {
				a.mutated(true)
				a.note = "Added to board: " + item
			}
		}
	case "g":
		if a.busy != "" {
			return a, nil
		}
		f := a.sess.Form()
		a.busy = "Generating charter, risks, and breakdown…"
		return a, tea.Batch(a.spinner.Tick, generatePlanCmd(a.llm, genai.Brief{
			ProjectName: f.Name,
			Budget:      f.Budget,
			Duration:    f.Duration,
			ProjectType: f.Type,
			Objective:   f.Objective,
			Constraints: f.Constraints,
		}))
	}
	return a, nil
}

func (a App) renderPlanTab(cw, h int) string {
	t := theme.Active
	if a.sess == nil {
		return noProjectView(cw)
	}
	f := a.sess.Form()
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	text := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder

	// Charter
	charter := strings.TrimSpace(a.sess.Charter())
	var charterBody string
	if charter == "" {
		charterBody = dim.Render("No charter yet. Press g to generate one from the project details.")
	} else {
		inner := components.CardInnerWidth(cw)
		charterBody = text.Width(inner).Render(charter)
	}
	b.WriteString(components.ContentCard("Charter", charterBody, cw))
	b.WriteString("\n")

	// Risks and breakdown side by side
	halves := components.LayoutRow(cw, 2)
	b.WriteString(components.CardRow([]string{
		components.ContentCard("Risk register", a.renderRisks(components.CardInnerWidth(halves[0])), halves[0]),
		components.ContentCard("Work breakdown", a.renderWBS(components.CardInnerWidth(halves[1])), halves[1]),
	}))
	b.WriteString("\n")

	// Timeline
	tl := plan.BuildTimeline(a.sess.WBS(), int(f.Duration), f.Type)
	title := fmt.Sprintf("Timeline (%s)", cli.FormatWeeks(tl.Weeks))
	if tl.Static {
		title += " · sample"
	}
	b.WriteString(components.ContentCard(title, renderGantt(tl, components.CardInnerWidth(cw)), cw))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Background).
		Render("g generate · j/k item · Enter add to board · J/K scroll"))

	lines := strings.Split(b.String(), "\n")
	scroll := min(a.plan.scroll, max(0, len(lines)-h))
	return strings.Join(lines[scroll:], "\n")
}

func (a App) renderRisks(inner int) string {
	t := theme.Active
	risks := a.sess.Risks()
	if len(risks) == 0 {
		return lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("No risks recorded")
	}
	text := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	for i, r := range risks {
		if i > 0 {
			b.WriteString("\n")
		}
		level := func(label, v string) string {
			return muted.Render(label) + lipgloss.NewStyle().Foreground(t.LevelColor(v)).Background(t.Surface).Bold(true).Render(v)
		}
		b.WriteString(text.Render(cli.Truncate(fmt.Sprintf("%s %s", r.ID, r.Description), inner)))
		b.WriteString("\n")
		b.WriteString(level("  impact ", orDash(r.Impact)))
		b.WriteString(level("  probability ", orDash(r.Probability)))
		if r.Owner != "" {
			b.WriteString(muted.Render(cli.Truncate("  · "+r.Owner, max(0, inner-30))))
		}
	}
	return b.String()
}

func (a App) renderWBS(inner int) string {
	t := theme.Active
	phases, static := plan.ActiveWBS(a.sess.WBS())
	phaseStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	row := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	sel := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)
	done := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)
	add := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	if static {
		b.WriteString(add.Render("Sample breakdown, press g to generate"))
		b.WriteString("\n")
	}
	idx := 0
	for pi, p := range phases {
		if pi > 0 {
			b.WriteString("\n")
		}
		b.WriteString(phaseStyle.Render(cli.Truncate(fmt.Sprintf("%s %s", p.ID, p.Name), inner)))
		for _, item := range p.Items {
			b.WriteString("\n")
			marker := add.Render("  + ")
			if a.sess.WBSItemAdded(item) {
				marker = done.Render("  ✓ ")
			}
			style := row
			if idx == a.plan.cursor {
				style = sel
			}
			b.WriteString(marker)
			b.WriteString(style.Render(cli.Truncate(item, inner-4)))
			idx++
		}
	}
	return b.String()
}

// renderGantt draws one bar per phase across the timeline's week columns.
func renderGantt(tl plan.Timeline, inner int) string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	bar := lipgloss.NewStyle().Foreground(t.Blue).Background(t.Surface)
	empty := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	labelW := min(24, inner/3)
	rangeW := 9
	avail := max(1, inner-labelW-rangeW-2)
	cols := tl.Columns(avail)
	cellW := max(1, avail/max(1, cols))

	var b strings.Builder
	for i, p := range tl.Phases {
		if i > 0 {
			b.WriteString("\n")
		}
		start, dur := int(p.StartWeek), int(p.DurationWeeks)
		from, to := tl.Span(p, cols)
		b.WriteString(label.Render(fmt.Sprintf("%-*s ", labelW, cli.Truncate(p.Name, labelW))))
		for c := 0; c < cols; c++ {
			if c >= from && c < to {
				b.WriteString(bar.Render(strings.Repeat("█", cellW)))
			} else {
				b.WriteString(empty.Render(strings.Repeat("·", cellW)))
			}
		}
		b.WriteString(muted.Render(fmt.Sprintf(" wk %d–%d", start+1, start+dur)))
	}
	return b.String()
}
