// Package calendar builds month grids and binds events to day cells.
package calendar

import (
	"fmt"
	"time"

	"github.com/theirongolddev/pmx/internal/model"
)

// IsLeap applies the proleptic Gregorian rule.
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the number of days in month of year.
func DaysInMonth(year int, month time.Month) int {
	switch month {
	case time.February:
		if IsLeap(year) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	}
	return 31
}

// FirstWeekday returns the weekday of day 1 (0 = Sunday).
func FirstWeekday(year int, month time.Month) int {
	return int(time.Date(year, month, 1, 12, 0, 0, 0, time.UTC).Weekday())
}

// BuildGrid returns the month laid out in rows of seven. A zero cell is
// padding; other cells are day numbers 1..DaysInMonth in order.
func BuildGrid(year int, month time.Month) []int {
	lead := FirstWeekday(year, month)
	n := DaysInMonth(year, month)
	size := lead + n
	if rem := size % 7; rem != 0 {
		size += 7 - rem
	}
	cells := make([]int, size)
	for d := 1; d <= n; d++ {
		cells[lead+d-1] = d
	}
	return cells
}

// DateKey formats a YYYY-MM-DD key.
func DateKey(year int, month time.Month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
}

// EventsOnDay returns the events whose date key equals the given day, in input order.
func EventsOnDay(events []model.CalendarEvent, year int, month time.Month, day int) []model.CalendarEvent {
	key := DateKey(year, month, day)
	var out []model.CalendarEvent
	for _, e := range events {
		if e.Date == key {
			out = append(out, e)
		}
	}
	return out
}

// IsToday reports whether day/month/year is now's local calendar day.
func IsToday(day, year int, month time.Month, now time.Time) bool {
	return now.Day() == day && now.Month() == month && now.Year() == year
}

// PrevMonth steps back one month, rolling the year.
func PrevMonth(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}

// NextMonth steps forward one month, rolling the year.
func NextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}
