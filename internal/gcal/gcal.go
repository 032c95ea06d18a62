// Package gcal pushes a project's schedule to a Google Calendar.
package gcal

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/theirongolddev/pmx/internal/model"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// eventKey is the private extended property linking a Google event to a pmx event.
const eventKey = "pmx_event_id"

// defaultLength applies to timed events without an end time.
const defaultLength = time.Hour

var colorIDs = map[string]string{
	model.ColorBlue:   "9",
	model.ColorYellow: "5",
	model.ColorRed:    "11",
}

// Convert maps a pmx event onto a Google event. Events without a start time
// become all-day events.
func Convert(e model.CalendarEvent, loc *time.Location) (*calendar.Event, error) {
	day, err := time.ParseInLocation("2006-01-02", e.Date, loc)
	if err != nil {
		return nil, fmt.Errorf("event %s: bad date %q", e.ID, e.Date)
	}

	out := &calendar.Event{
		Summary: e.Title,
		ColorId: colorIDs[e.Color],
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{eventKey: e.ID},
		},
	}

	if e.StartTime == "" {
		out.Start = &calendar.EventDateTime{Date: e.Date}
		out.End = &calendar.EventDateTime{Date: day.AddDate(0, 0, 1).Format("2006-01-02")}
		return out, nil
	}

	start, err := clockOn(day, e.StartTime)
	if err != nil {
		return nil, fmt.Errorf("event %s: bad start time %q", e.ID, e.StartTime)
	}
	end := start.Add(defaultLength)
	if e.EndTime != "" {
		t, err := clockOn(day, e.EndTime)
		if err != nil {
			return nil, fmt.Errorf("event %s: bad end time %q", e.ID, e.EndTime)
		}
		if t.After(start) {
			end = t
		}
	}
	out.Start = &calendar.EventDateTime{DateTime: start.Format(time.RFC3339)}
	out.End = &calendar.EventDateTime{DateTime: end.Format(time.RFC3339)}
	return out, nil
}

func clockOn(day time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}

// Client pushes events to one calendar.
type Client struct {
	srv        *calendar.Service
	calendarID string
	loc        *time.Location
	logger     *slog.Logger
}

// Connect builds a calendar service over hc and resolves the calendar by its
// display name. Extra options are passed to the service.
func Connect(ctx context.Context, hc *http.Client, calendarName string, logger *slog.Logger, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(hc)}, opts...)
	srv, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating calendar service: %w", err)
	}

	list, err := srv.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("listing calendars: %w", err)
	}
	var id string
	for _, item := range list.Items {
		if item.Summary == calendarName {
			id = item.Id
			break
		}
	}
	if id == "" {
		return nil, fmt.Errorf("calendar %q not found", calendarName)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{srv: srv, calendarID: id, loc: time.Local, logger: logger}, nil
}

// PushResult counts what a push did.
type PushResult struct {
	Created   int
	Updated   int
	Unchanged int
	Failed    int
}

// Push upserts every event. Failures on single events are logged and counted
// so one bad entry does not stop the rest.
func (c *Client) Push(ctx context.Context, events []model.CalendarEvent) (PushResult, error) {
	var res PushResult
	for _, e := range events {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		outcome, err := c.upsert(ctx, e)
		if err != nil {
			res.Failed++
			c.logger.Warn("calendar push failed", "event", e.ID, "title", e.Title, "err", err)
			continue
		}
		switch outcome {
		case created:
			res.Created++
		case updated:
			res.Updated++
		default:
			res.Unchanged++
		}
	}
	return res, nil
}

type outcome int

const (
	unchanged outcome = iota
	created
	updated
)

func (c *Client) upsert(ctx context.Context, e model.CalendarEvent) (outcome, error) {
	target, err := Convert(e, c.loc)
	if err != nil {
		return unchanged, err
	}

	existing, err := c.find(ctx, e.ID)
	if err != nil {
		return unchanged, err
	}
	if existing == nil {
		if _, err := c.srv.Events.Insert(c.calendarID, target).Context(ctx).Do(); err != nil {
			return unchanged, err
		}
		return created, nil
	}
	if !needsUpdate(existing, target) {
		return unchanged, nil
	}
	if _, err := c.srv.Events.Patch(c.calendarID, existing.Id, target).Context(ctx).Do(); err != nil {
		return unchanged, err
	}
	return updated, nil
}

func (c *Client) find(ctx context.Context, id string) (*calendar.Event, error) {
	events, err := c.srv.Events.List(c.calendarID).
		PrivateExtendedProperty(eventKey + "=" + id).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	if len(events.Items) == 0 {
		return nil, nil
	}
	return events.Items[0], nil
}

func needsUpdate(existing, target *calendar.Event) bool {
	return existing.Summary != target.Summary ||
		existing.ColorId != target.ColorId ||
		!sameTime(existing.Start, target.Start) ||
		!sameTime(existing.End, target.End)
}

func sameTime(a, b *calendar.EventDateTime) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Date != "" || b.Date != "" {
		return a.Date == b.Date
	}
	ta, errA := time.Parse(time.RFC3339, a.DateTime)
	tb, errB := time.Parse(time.RFC3339, b.DateTime)
	if errA != nil || errB != nil {
		return a.DateTime == b.DateTime
	}
	return ta.Equal(tb)
}
