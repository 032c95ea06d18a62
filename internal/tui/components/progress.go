package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/theirongolddev/pmx/internal/tui/theme"
)

// ProgressBar renders a completion bar with its percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	var barColor lipgloss.Color
	switch {
	case pct >= 0.8:
		barColor = t.Green
	case pct >= 0.5:
		barColor = t.Accent
	default:
		barColor = t.Cyan
	}

	filledStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	b.WriteString(filledStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(emptyStyle.Render(strings.Repeat("░", width-filled)))

	return b.String() + spaceStyle.Render(" ") + pctStyle.Render(fmt.Sprintf("%3.0f%%", pct*100))
}

// ColorForPct returns green/yellow/orange/red as spending approaches the plan.
func ColorForPct(pct float64) string {
	t := theme.Active
	switch {
	case pct > 1:
		return string(t.Red)
	case pct >= 0.9:
		return string(t.Orange)
	case pct >= 0.7:
		return string(t.Yellow)
	default:
		return string(t.Green)
	}
}

// SpendBar renders a labelled actual-versus-planned bar. The bar is capped
// at full; the percentage is not, so overspend reads as e.g. 130%.
func SpendBar(label string, actual, planned float64, labelW, barWidth int) string {
	t := theme.Active

	pct := 0.0
	if planned > 0 {
		pct = actual / planned
	} else if actual > 0 {
		pct = 2
	}
	fill := min(max(pct, 0), 1)

	bar := progress.New(
		progress.WithSolidFill(ColorForPct(pct)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorForPct(pct))).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	pctStr := "   –"
	if planned > 0 {
		pctStr = fmt.Sprintf("%3.0f%%", pct*100)
	}

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, truncateLabel(label, labelW))) +
		spaceStyle.Render(" ") +
		bar.ViewAs(fill) +
		spaceStyle.Render(" ") +
		pctStyle.Render(pctStr)
}

func truncateLabel(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
