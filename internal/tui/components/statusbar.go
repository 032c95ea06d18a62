package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/theirongolddev/pmx/internal/tui/theme"
)

// SaveState is what the status bar shows about autosave.
type SaveState int

const (
	SaveIdle SaveState = iota
	SavePending
	SaveDone
	SaveFailed
)

// RenderStatusBar renders the bottom status bar: key hints on the left, the
// open project and its save state on the right. note replaces the hints
// when set.
func RenderStatusBar(width int, project string, state SaveState, note string) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	left := " [?]help  [q]uit"
	if note != "" {
		left = " " + note
	}

	var right string
	if project != "" {
		right = project
		switch state {
		case SavePending:
			right += lipgloss.NewStyle().Foreground(t.Yellow).Background(t.Surface).Render(" · saving…")
		case SaveDone:
			right += lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface).Render(" · saved")
		case SaveFailed:
			right += lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Bold(true).Render(" · save failed")
		}
		right += " "
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}
	gap := lipgloss.NewStyle().Background(t.Surface).Render(strings.Repeat(" ", padding))

	return base.Render(left) + gap + base.Render(right)
}
