package tui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/theirongolddev/pmx/internal/tui/components"
)

func TestTabAtXMatchesTabWidths(t *testing.T) {
	n := len(components.Tabs)
	for active := 0; active < n; active++ {
		a := App{activeTab: active}
		pos := 0

		for i := 0; i < n; i++ {
			w := tabWidthForTest(i)
			x := pos + w/2 // midpoint inside this tab
			if got := a.tabAtX(x); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, x, got, i)
			}
			pos += w
			if i < n-1 {
				pos++ // separator
			}
		}
		if got := a.tabAtX(pos + 5); got != -1 {
			t.Fatalf("active=%d click past the last tab -> %d, want -1", active, got)
		}
	}
}

// Every tab renders as " <key> <name> " whether active or not.
func tabWidthForTest(tabIdx int) int {
	return lipgloss.Width(components.Tabs[tabIdx].Name) + 4
}
