package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/pmx/internal/model"
	"github.com/theirongolddev/pmx/internal/plan"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0"},
		{999.4, "$999"},
		{1234.5, "$1,235"},
		{150000, "$150,000"},
		{-80, "-$80"},
	}
	for _, tt := range tests {
		if got := FormatCurrency(tt.in); got != tt.want {
			t.Fatalf("FormatCurrency(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := FormatVariance(-1500); got != "-$1,500" {
		t.Fatalf("FormatVariance(-1500) = %q", got)
	}
	if got := FormatVariance(20); got != "+$20" {
		t.Fatalf("FormatVariance(20) = %q", got)
	}
}

func TestFormatWeeksAndTruncate(t *testing.T) {
	if got := FormatWeeks(1); got != "1 week" {
		t.Fatalf("FormatWeeks(1) = %q", got)
	}
	if got := FormatWeeks(12); got != "12 weeks" {
		t.Fatalf("FormatWeeks(12) = %q", got)
	}
	if got := Truncate("Equipment Lead Time", 9); got != "Equipmen…" {
		t.Fatalf("Truncate = %q", got)
	}
	if got := Truncate("short", 9); got != "short" {
		t.Fatalf("Truncate(short) = %q", got)
	}
}

func TestRenderMonthGridHasEveryDay(t *testing.T) {
	events := []model.CalendarEvent{{ID: "e", Title: "x", Date: "2024-02-29"}}
	out := RenderMonthGrid(2024, time.February, events, time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC))
	if !strings.Contains(out, "February 2024") {
		t.Fatalf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "29•") {
		t.Fatalf("leap day event not marked:\n%s", out)
	}
	if strings.Contains(out, "30") {
		t.Fatalf("February 2024 rendered a 30th:\n%s", out)
	}
}

func TestRenderGanttBars(t *testing.T) {
	tl := plan.BuildTimeline([]model.Phase{
		{Name: "Survey", StartWeek: 0, DurationWeeks: 2},
		{Name: "Build", StartWeek: 2, DurationWeeks: 3},
	}, 0, "")
	out := RenderGantt(tl, 10)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want header + 2 bars:\n%s", len(lines), out)
	}
	if strings.Count(lines[1], "█") != 2 || strings.Count(lines[2], "█") != 3 {
		t.Fatalf("bar lengths wrong:\n%s", out)
	}
	if !strings.Contains(lines[2], "wk 3–5") {
		t.Fatalf("range label missing:\n%s", out)
	}
}

func TestRenderGanttFitsHugeDurations(t *testing.T) {
	b, err := plan.DecodeBreakdown(`{"wbs":[{"id":"1","name":"Forever","startWeek":0,"durationWeeks":2000000}]}`)
	if err != nil {
		t.Fatalf("DecodeBreakdown: %v", err)
	}
	tl := plan.BuildTimeline(b.WBS, 0, "")
	if tl.Weeks != 2000000 {
		t.Fatalf("Weeks = %d, want the phase kept as given", tl.Weeks)
	}
	out := RenderGantt(tl, 10)
	if len(out) > 2000 {
		t.Fatalf("output is %d bytes, want a fixed-width chart", len(out))
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want header + 1 bar:\n%s", len(lines), out)
	}
	if got := strings.Count(lines[1], "█"); got != GanttColumns {
		t.Fatalf("bar width = %d, want %d", got, GanttColumns)
	}
	if !strings.Contains(lines[1], "wk 1–2000000") {
		t.Fatalf("range label missing:\n%s", out)
	}
}

func TestRenderTableAlignment(t *testing.T) {
	out := RenderTable(Table{
		Headers:  []string{"Category", "Description", "Planned"},
		Rows:     [][]string{{"Labor", "crew", "$100"}, {"---"}, {"Total", "", "$100"}},
		LeftCols: 2,
	})
	if !strings.Contains(out, "crew       ") {
		t.Fatalf("second column not left-aligned:\n%s", out)
	}
	if !strings.Contains(out, "    $100") {
		t.Fatalf("amount not right-aligned:\n%s", out)
	}
}
