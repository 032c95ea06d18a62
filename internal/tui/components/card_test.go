package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/theirongolddev/pmx/internal/tui/theme"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestCardRowBackgroundFill(t *testing.T) {
	theme.SetActive("flexoki-dark")

	shortCard := ContentCard("Short", "Content", 22)
	tallCard := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4\nLine 5", 22)

	shortLines := len(strings.Split(shortCard, "\n"))
	tallLines := len(strings.Split(tallCard, "\n"))
	if shortLines >= tallLines {
		t.Fatal("short card should be shorter than tall card")
	}

	lines := strings.Split(CardRow([]string{tallCard, shortCard}), "\n")
	if len(lines) != tallLines {
		t.Fatalf("joined height = %d, want %d", len(lines), tallLines)
	}
	for i := shortLines; i < len(lines); i++ {
		if !strings.Contains(lines[i], "\x1b[") {
			t.Errorf("padding line %d has no ANSI styling: %q", i, lines[i])
		}
	}
}

func TestLayoutRowSumsToTotal(t *testing.T) {
	tests := []struct {
		total, n int
	}{
		{100, 3}, {81, 4}, {7, 7}, {120, 1},
	}
	for _, tt := range tests {
		sum := 0
		for _, w := range LayoutRow(tt.total, tt.n) {
			sum += w
		}
		if sum != tt.total {
			t.Fatalf("LayoutRow(%d, %d) sums to %d", tt.total, tt.n, sum)
		}
	}
	if LayoutRow(10, 0) != nil {
		t.Fatal("LayoutRow with n=0 should be nil")
	}
}

func TestMetricCardRowWidth(t *testing.T) {
	theme.SetActive("flexoki-dark")
	row := MetricCardRow([]Metric{
		{Label: "Projects", Value: "3"},
		{Label: "Tasks", Value: "12", Delta: "4 done"},
	}, 60)
	if w := lipgloss.Width(row); w != 60 {
		t.Fatalf("row width = %d, want 60", w)
	}
}

func TestSpendBarShowsOverspend(t *testing.T) {
	out := SpendBar("Labor", 1300, 1000, 10, 20)
	if !strings.Contains(out, "130%") {
		t.Fatalf("SpendBar = %q, want 130%%", out)
	}
	if out := SpendBar("Misc", 0, 0, 10, 20); !strings.Contains(out, "–") {
		t.Fatalf("SpendBar without plan = %q", out)
	}
}

func TestTabIdxByKey(t *testing.T) {
	if got := TabIdxByKey('2'); got != TabBoard {
		t.Fatalf("TabIdxByKey('2') = %d, want %d", got, TabBoard)
	}
	if got := TabIdxByKey('x'); got != -1 {
		t.Fatalf("TabIdxByKey('x') = %d, want -1", got)
	}
}
