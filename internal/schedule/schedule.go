// Package schedule holds the flat list of dated calendar events.
package schedule

import (
	"slices"
	"strings"

	"github.com/theirongolddev/pmx/internal/ident"
	"github.com/theirongolddev/pmx/internal/model"
)

// noStart sorts after any real HH:MM.
const noStart = "99:99"

// Store owns the event list.
type Store struct {
	events []model.CalendarEvent
	ids    *ident.Generator
}

// New returns a Store seeded with a copy of events.
func New(events []model.CalendarEvent, ids *ident.Generator) *Store {
	if ids == nil {
		ids = ident.New(nil)
	}
	return &Store{events: slices.Clone(events), ids: ids}
}

// Snapshot returns a copy of all events in insertion order.
func (s *Store) Snapshot() []model.CalendarEvent {
	out := make([]model.CalendarEvent, len(s.events))
	copy(out, s.events)
	return out
}

// Reset replaces every event.
func (s *Store) Reset(events []model.CalendarEvent) {
	s.events = slices.Clone(events)
}

// Len returns the number of events.
func (s *Store) Len() int { return len(s.events) }

// NormalizeColor maps unknown tags to accent.
func NormalizeColor(c string) string {
	c = strings.ToLower(strings.TrimSpace(c))
	if slices.Contains(model.ColorTags, c) {
		return c
	}
	return model.ColorAccent
}

// AddEvent appends an event on date. An empty title after trimming is rejected.
func (s *Store) AddEvent(date, title, color, start, end string) (model.CalendarEvent, bool) {
	title = strings.TrimSpace(title)
	date = strings.TrimSpace(date)
	if title == "" || date == "" {
		return model.CalendarEvent{}, false
	}
	e := model.CalendarEvent{
		ID:        s.ids.Next("evt"),
		Title:     title,
		Date:      date,
		StartTime: strings.TrimSpace(start),
		EndTime:   strings.TrimSpace(end),
		Color:     NormalizeColor(color),
	}
	s.events = append(s.events, e)
	return e, true
}

// DeleteEvent removes the event with id if present.
func (s *Store) DeleteEvent(id string) bool {
	i := slices.IndexFunc(s.events, func(e model.CalendarEvent) bool { return e.ID == id })
	if i < 0 {
		return false
	}
	s.events = slices.Delete(slices.Clone(s.events), i, i+1)
	return true
}

// EventsForDate returns the events on date ordered by start time. Events with
// no start time come last; ties keep insertion order.
func (s *Store) EventsForDate(date string) []model.CalendarEvent {
	var out []model.CalendarEvent
	for _, e := range s.events {
		if e.Date == date {
			out = append(out, e)
		}
	}
	slices.SortStableFunc(out, func(a, b model.CalendarEvent) int {
		return strings.Compare(sortKey(a), sortKey(b))
	})
	return out
}

func sortKey(e model.CalendarEvent) string {
	if e.StartTime == "" {
		return noStart
	}
	return e.StartTime
}
