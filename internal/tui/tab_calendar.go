package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/theirongolddev/pmx/internal/calendar"
	"github.com/theirongolddev/pmx/internal/cli"
	"github.com/theirongolddev/pmx/internal/model"
	"github.com/theirongolddev/pmx/internal/tui/components"
	"github.com/theirongolddev/pmx/internal/tui/theme"
)

type calState struct {
	year   int
	month  time.Month
	day    int
	cursor int // selected event on the day
}

func newCalState(now time.Time) calState {
	return calState{year: now.Year(), month: now.Month(), day: now.Day()}
}

func (c calState) dateKey() string {
	return calendar.DateKey(c.year, c.month, c.day)
}

// shiftDays moves the selected day by n, crossing month boundaries.
func (c *calState) shiftDays(n int) {
	d := time.Date(c.year, c.month, c.day+n, 0, 0, 0, 0, time.UTC)
	c.year, c.month, c.day = d.Year(), d.Month(), d.Day()
	c.cursor = 0
}

// shiftMonth moves to the previous or next month, keeping the day when it
// exists there.
func (c *calState) shiftMonth(dir int) {
	if dir < 0 {
		c.year, c.month = calendar.PrevMonth(c.year, c.month)
	} else {
		c.year, c.month = calendar.NextMonth(c.year, c.month)
	}
	c.day = min(c.day, calendar.DaysInMonth(c.year, c.month))
	c.cursor = 0
}

func (a App) updateCalendar(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "h", "left":
		a.cal.shiftDays(-1)
	case "l", "right":
		a.cal.shiftDays(1)
	case "k", "up":
		a.cal.shiftDays(-7)
	case "j", "down":
		a.cal.shiftDays(7)
	case "[", "<":
		a.cal.shiftMonth(-1)
	case "]", ">":
		a.cal.shiftMonth(1)
	case "t":
		a.cal = newCalState(a.clock.Now())
	case "J":
		a.cal.cursor++
	case "K":
		a.cal.cursor = max(0, a.cal.cursor-1)
	case "a":
		if !a.requireProject() {
			return a, nil
		}
		cmd := a.startPrompt(promptEvent, "New event on "+a.cal.dateKey(), "09:00-10:00 Site walkthrough #blue", "", "")
		return a, cmd
	case "x", "delete":
		if !a.requireProject() {
			return a, nil
		}
		events := a.sess.Schedule.EventsForDate(a.cal.dateKey())
		if a.cal.cursor < len(events) {
			a.mutated(a.sess.DeleteEvent(events[a.cal.cursor].ID))
		}
	}
	if a.sess != nil {
		n := len(a.sess.Schedule.EventsForDate(a.cal.dateKey()))
		a.cal.cursor = max(0, min(a.cal.cursor, n-1))
	}
	return a, nil
}

func (a App) renderCalendarTab(cw int) string {
	t := theme.Active
	var events []model.CalendarEvent
	if a.sess != nil {
		events = a.sess.Schedule.Snapshot()
	}

	halves := components.LayoutRow(cw, 2)
	grid := components.ContentCard(fmt.Sprintf("%s %d", a.cal.month, a.cal.year),
		a.renderMonthGrid(events), halves[0])

	inner := components.CardInnerWidth(halves[1])
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	var b strings.Builder
	day := calendar.EventsOnDay(events, a.cal.year, a.cal.month, a.cal.day)
	if a.sess != nil {
		day = a.sess.Schedule.EventsForDate(a.cal.dateKey())
	}
	if len(day) == 0 {
		b.WriteString(dim.Render("No events"))
	}
	for i, e := range day {
		if i > 0 {
			b.WriteString("\n")
		}
		when := "all day"
		if e.StartTime != "" {
			when = e.StartTime
			if e.EndTime != "" {
				when += "–" + e.EndTime
			}
		}
		marker := lipgloss.NewStyle().Foreground(t.EventColor(e.Color)).Background(t.Surface).Render("●")
		style := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
		if i == a.cal.cursor {
			style = lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)
		}
		b.WriteString(marker)
		b.WriteString(style.Render(fmt.Sprintf(" %-11s %s", when, cli.Truncate(e.Title, inner-14))))
	}
	dateTitle := time.Date(a.cal.year, a.cal.month, a.cal.day, 0, 0, 0, 0, time.UTC).Format("Monday, Jan 2")
	list := components.ContentCard(dateTitle, b.String(), halves[1])

	hint := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Background).
		Render("h/l day · j/k week · [ ] month · t today · J/K event · a add · x delete")
	return components.CardRow([]string{grid, list}) + "\n" + hint
}

func (a App) renderMonthGrid(events []model.CalendarEvent) string {
	t := theme.Active
	head := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	cell := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	today := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	sel := lipgloss.NewStyle().Foreground(t.Background).Background(t.Accent).Bold(true)
	blank := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	for d := 0; d < 7; d++ {
		b.WriteString(head.Render(fmt.Sprintf(" %-4s", cli.FormatDayOfWeek(d))))
	}
	now := a.clock.Now()
	for i, day := range calendar.BuildGrid(a.cal.year, a.cal.month) {
		if i%7 == 0 {
			b.WriteString("\n")
		}
		if day == 0 {
			b.WriteString(blank.Render("     "))
			continue
		}
		mark := blank.Render(" ")
		if on := calendar.EventsOnDay(events, a.cal.year, a.cal.month, day); len(on) > 0 {
			mark = lipgloss.NewStyle().Foreground(t.EventColor(on[0].Color)).Background(t.Surface).Render("•")
		}
		style := cell
		switch {
		case day == a.cal.day:
			style = sel
		case calendar.IsToday(day, a.cal.year, a.cal.month, now):
			style = today
		}
		b.WriteString(style.Render(fmt.Sprintf(" %2d", day)))
		b.WriteString(mark)
		b.WriteString(blank.Render(" "))
	}
	return b.String()
}
