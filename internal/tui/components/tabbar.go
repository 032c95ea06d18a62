package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/theirongolddev/pmx/internal/tui/theme"
)

// Tab is one entry in the tab bar. Key is the digit that jumps to it.
type Tab struct {
	Name string
	Key  rune
}

// Tab indexes, in display order.
const (
	TabDashboard = iota
	TabBoard
	TabCalendar
	TabBudget
	TabPlan
	TabAssistant
	TabSettings
)

// Tabs defines all available tabs.
var Tabs = []Tab{
	{Name: "Dashboard", Key: '1'},
	{Name: "Board", Key: '2'},
	{Name: "Calendar", Key: '3'},
	{Name: "Budget", Key: '4'},
	{Name: "Plan", Key: '5'},
	{Name: "Assistant", Key: '6'},
	{Name: "Settings", Key: '7'},
}

func renderTab(tab Tab, active bool) string {
	t := theme.Active
	if active {
		return lipgloss.NewStyle().
			Foreground(t.AccentBright).
			Background(t.SurfaceHover).
			Bold(true).
			Padding(0, 1).
			Render(string(tab.Key) + " " + tab.Name)
	}
	key := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render(string(tab.Key) + " ")
	name := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render(tab.Name)
	pad := lipgloss.NewStyle().Background(t.Surface).Render(" ")
	return pad + key + name + pad
}

// TabVisualWidth is the rendered width of tab, used for mouse hit-testing.
func TabVisualWidth(tab Tab, active bool) int {
	return lipgloss.Width(renderTab(tab, active))
}

// RenderTabBar renders the tab bar with the given active index on one row.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active
	sep := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	parts := make([]string, len(Tabs))
	for i, tab := range Tabs {
		parts[i] = renderTab(tab, i == activeIdx)
	}
	row := strings.Join(parts, sep)

	return lipgloss.NewStyle().Background(t.Surface).Width(width).Render(row)
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
