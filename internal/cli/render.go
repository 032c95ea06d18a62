package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/theirongolddev/pmx/internal/calendar"
	"github.com/theirongolddev/pmx/internal/model"
	"github.com/theirongolddev/pmx/internal/plan"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
	ColorBlue      = lipgloss.Color("#4385BE")
	ColorYellow    = lipgloss.Color("#D0A215")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	barStyle = lipgloss.NewStyle().
			Foreground(ColorBlue)

	todayStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// EventColor maps an event color tag to its terminal color.
func EventColor(tag string) lipgloss.Color {
	switch tag {
	case model.ColorBlue:
		return ColorBlue
	case model.ColorYellow:
		return ColorYellow
	case model.ColorRed:
		return ColorRed
	default:
		return ColorAccent
	}
}

// RiskColor maps a Low/Medium/High level to a color.
func RiskColor(level string) lipgloss.Color {
	switch level {
	case "High":
		return ColorRed
	case "Medium":
		return ColorOrange
	default:
		return ColorGreen
	}
}

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil
	// LeftCols is the number of leading left-aligned columns; the rest are
	// right-aligned. Zero means one.
	LeftCols int
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	width := 55
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(width).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

func rule(b *strings.Builder, widths []int, left, mid, right string) {
	b.WriteString(dimStyle.Render(left))
	for i, w := range widths {
		b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
		if i < len(widths)-1 {
			b.WriteString(dimStyle.Render(mid))
		}
	}
	b.WriteString(dimStyle.Render(right))
	b.WriteString("\n")
}

// RenderTable renders a bordered table with headers and rows. A row holding
// the single cell "---" renders as a separator.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}
	leftCols := t.LeftCols
	if leftCols <= 0 {
		leftCols = 1
	}

	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
	} else {
		for i, h := range t.Headers {
			widths[i] = max(widths[i], lipgloss.Width(h))
		}
		for _, row := range t.Rows {
			for i, cell := range row {
				if i < numCols {
					widths[i] = max(widths[i], lipgloss.Width(cell))
				}
			}
		}
	}

	var b strings.Builder

	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	rule(&b, widths, "╭", "┬", "╮")

	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i, h := range t.Headers {
			padded := fmt.Sprintf(" %-*s ", widths[i], h)
			b.WriteString(headerStyle.Render(padded))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
		rule(&b, widths, "├", "┼", "┤")
	}

	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			rule(&b, widths, "├", "┼", "┤")
			continue
		}

		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			w := widths[i]
			cell := ""
			if i < len(row) {
				cell = Truncate(row[i], w)
			}

			var padded string
			if i < leftCols {
				padded = fmt.Sprintf(" %-*s ", w, cell)
			} else {
				padded = fmt.Sprintf(" %*s ", w, cell)
			}
			b.WriteString(valueStyle.Render(padded))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
	}

	rule(&b, widths, "╰", "┴", "╯")
	return b.String()
}

// RenderProgressBar renders a simple text progress bar.
func RenderProgressBar(current, total int, width int) string {
	if total <= 0 {
		return ""
	}

	pct := float64(current) / float64(total)
	if pct > 1 {
		pct = 1
	}

	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %s/%s",
		mutedStyle.Render(bar),
		FormatNumber(int64(current)),
		FormatNumber(int64(total)),
	)
}

// RenderHorizontalBar renders a labelled horizontal bar chart entry.
func RenderHorizontalBar(label string, value, maxValue float64, maxWidth int) string {
	if maxValue <= 0 {
		return fmt.Sprintf("  %s", label)
	}
	barLen := int(value / maxValue * float64(maxWidth))
	barLen = min(max(barLen, 0), maxWidth)
	bar := strings.Repeat("█", barLen) + strings.Repeat(" ", maxWidth-barLen)
	return fmt.Sprintf("  %s %s", barStyle.Render(bar), label)
}

// RenderMonthGrid renders a Sunday-first month calendar. Days with events are
// marked with a dot; today is highlighted.
func RenderMonthGrid(year int, month time.Month, events []model.CalendarEvent, now time.Time) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("  %s %d", month, year)))
	b.WriteString("\n ")
	for d := 0; d < 7; d++ {
		b.WriteString(mutedStyle.Render(fmt.Sprintf(" %-4s", FormatDayOfWeek(d))))
	}
	b.WriteString("\n")

	cells := calendar.BuildGrid(year, month)
	for i, day := range cells {
		if i%7 == 0 {
			b.WriteString(" ")
		}
		switch {
		case day == 0:
			b.WriteString("     ")
		default:
			mark := " "
			if len(calendar.EventsOnDay(events, year, month, day)) > 0 {
				mark = "•"
			}
			cell := fmt.Sprintf(" %2d%s ", day, mark)
			if calendar.IsToday(day, year, month, now) {
				b.WriteString(todayStyle.Render(cell))
			} else {
				b.WriteString(valueStyle.Render(cell))
			}
		}
		if i%7 == 6 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// GanttColumns is the widest chart RenderGantt draws. Longer timelines are
// scaled to fit.
const GanttColumns = 60

// RenderGantt renders one bar per phase across the timeline. Each column is
// one week until the timeline outgrows GanttColumns.
func RenderGantt(tl plan.Timeline, labelWidth int) string {
	if labelWidth <= 0 {
		labelWidth = 24
	}
	cols := tl.Columns(GanttColumns)
	var b strings.Builder

	b.WriteString(strings.Repeat(" ", labelWidth+3))
	for c := 0; c < cols; c++ {
		w := tl.WeekAt(c, cols)
		if c == 0 || (c+1)%4 == 0 {
			label := fmt.Sprintf("W%d", w)
			b.WriteString(mutedStyle.Render(label))
			// Skip the columns the label spilled into.
			c += min(len(label)-1, cols-1-c)
			continue
		}
		b.WriteString(" ")
	}
	b.WriteString("\n")

	for _, p := range tl.Phases {
		start, dur := int(p.StartWeek), int(p.DurationWeeks)
		from, to := tl.Span(p, cols)
		fmt.Fprintf(&b, "  %-*s ", labelWidth, Truncate(p.Name, labelWidth))
		for c := 0; c < cols; c++ {
			if c >= from && c < to {
				b.WriteString(barStyle.Render("█"))
			} else {
				b.WriteString(dimStyle.Render("·"))
			}
		}
		fmt.Fprintf(&b, "  %s\n", mutedStyle.Render(fmt.Sprintf("wk %d–%d", start+1, start+dur)))
	}
	return b.String()
}

// RenderBoard renders the three columns side by side.
func RenderBoard(board model.Board, colWidth int) string {
	if colWidth <= 0 {
		colWidth = 32
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(colWidth).
		Padding(0, 1)

	cols := make([]string, 0, len(model.Columns))
	for _, c := range model.Columns {
		tasks := *board.Column(c)
		var b strings.Builder
		b.WriteString(headerStyle.Render(fmt.Sprintf("%s (%d)", c.Label(), len(tasks))))
		for _, t := range tasks {
			line := fmt.Sprintf("%s %s", dimStyle.Render(string(t.ID)), t.Title)
			if t.OwnerEmail != "" {
				line += mutedStyle.Render(" @" + t.OwnerEmail)
			}
			b.WriteString("\n")
			b.WriteString(line)
		}
		if len(tasks) == 0 {
			b.WriteString("\n")
			b.WriteString(dimStyle.Render("empty"))
		}
		cols = append(cols, box.Render(b.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}
