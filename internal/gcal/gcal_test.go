package gcal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/theirongolddev/pmx/internal/model"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

func TestConvertAllDay(t *testing.T) {
	ev, err := Convert(model.CalendarEvent{ID: "evt-1", Title: "Kickoff", Date: "2024-12-31", Color: model.ColorRed}, time.UTC)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if ev.Start.Date != "2024-12-31" || ev.End.Date != "2025-01-01" {
		t.Fatalf("all-day span = %s..%s, want 2024-12-31..2025-01-01", ev.Start.Date, ev.End.Date)
	}
	if ev.ColorId != "11" {
		t.Fatalf("ColorId = %q, want 11", ev.ColorId)
	}
	if got := ev.ExtendedProperties.Private[eventKey]; got != "evt-1" {
		t.Fatalf("private %s = %q, want evt-1", eventKey, got)
	}
}

func TestConvertTimed(t *testing.T) {
	tests := []struct {
		name      string
		start     string
		end       string
		wantStart string
		wantEnd   string
	}{
		{"with end", "09:30", "11:00", "2024-07-01T09:30:00Z", "2024-07-01T11:00:00Z"},
		{"no end", "09:30", "", "2024-07-01T09:30:00Z", "2024-07-01T10:30:00Z"},
		{"end before start", "09:30", "08:00", "2024-07-01T09:30:00Z", "2024-07-01T10:30:00Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := Convert(model.CalendarEvent{ID: "e", Title: "x", Date: "2024-07-01", StartTime: tt.start, EndTime: tt.end}, time.UTC)
			if err != nil {
				t.Fatalf("Convert: %v", err)
			}
			if ev.Start.DateTime != tt.wantStart || ev.End.DateTime != tt.wantEnd {
				t.Fatalf("span = %s..%s, want %s..%s", ev.Start.DateTime, ev.End.DateTime, tt.wantStart, tt.wantEnd)
			}
			if ev.ColorId != "" {
				t.Fatalf("ColorId = %q, want default", ev.ColorId)
			}
		})
	}
}

func TestConvertRejectsBadInput(t *testing.T) {
	for _, e := range []model.CalendarEvent{
		{ID: "a", Date: "07/01/2024"},
		{ID: "b", Date: "2024-07-01", StartTime: "9am"},
	} {
		if _, err := Convert(e, time.UTC); err == nil {
			t.Fatalf("Convert(%+v) err = nil, want error", e)
		}
	}
}

// fakeCalendar serves the handful of Calendar API calls Push makes.
type fakeCalendar struct {
	mu      sync.Mutex
	events  map[string]*calendar.Event
	nextID  int
	inserts int
	patches int
}

func (f *fakeCalendar) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	switch {
	case strings.HasSuffix(path, "/users/me/calendarList"):
		_ = json.NewEncoder(w).Encode(calendar.CalendarList{Items: []*calendar.CalendarListEntry{
			{Id: "other", Summary: "Personal"},
			{Id: "cal-1", Summary: "PMX"},
		}})
	case strings.HasSuffix(path, "/calendars/cal-1/events") && r.Method == http.MethodGet:
		var items []*calendar.Event
		want := r.URL.Query().Get("privateExtendedProperty")
		for _, ev := range f.events {
			if eventKey+"="+ev.ExtendedProperties.Private[eventKey] == want {
				items = append(items, ev)
			}
		}
		_ = json.NewEncoder(w).Encode(calendar.Events{Items: items})
	case strings.HasSuffix(path, "/calendars/cal-1/events") && r.Method == http.MethodPost:
		var ev calendar.Event
		_ = json.NewDecoder(r.Body).Decode(&ev)
		f.nextID++
		ev.Id = fmt.Sprintf("g%d", f.nextID)
		f.events[ev.Id] = &ev
		f.inserts++
		_ = json.NewEncoder(w).Encode(ev)
	case strings.Contains(path, "/calendars/cal-1/events/") && r.Method == http.MethodPatch:
		id := path[strings.LastIndex(path, "/")+1:]
		ev, ok := f.events[id]
		if !ok {
			http.Error(w, `{"error":{"code":404,"message":"not found"}}`, http.StatusNotFound)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(ev)
		f.patches++
		_ = json.NewEncoder(w).Encode(ev)
	default:
		http.Error(w, "unexpected "+r.Method+" "+path, http.StatusNotFound)
	}
}

func connectFake(t *testing.T, f *fakeCalendar, name string) (*Client, error) {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return Connect(context.Background(), srv.Client(), name, nil,
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
	)
}

func TestPushUpserts(t *testing.T) {
	f := &fakeCalendar{events: map[string]*calendar.Event{}}
	c, err := connectFake(t, f, "PMX")
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	c.loc = time.UTC

	events := []model.CalendarEvent{
		{ID: "evt-1", Title: "Kickoff", Date: "2024-07-01", StartTime: "09:00", Color: model.ColorBlue},
		{ID: "evt-2", Title: "Pour", Date: "2024-07-03"},
		{ID: "evt-3", Title: "Broken", Date: "not a date"},
	}
	res, err := c.Push(context.Background(), events)
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if res != (PushResult{Created: 2, Failed: 1}) {
		t.Fatalf("first push = %+v, want 2 created 1 failed", res)
	}

	events[0].Title = "Kickoff meeting"
	res, err = c.Push(context.Background(), events[:2])
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if res != (PushResult{Updated: 1, Unchanged: 1}) {
		t.Fatalf("second push = %+v, want 1 updated 1 unchanged", res)
	}
	if f.inserts != 2 || f.patches != 1 {
		t.Fatalf("inserts/patches = %d/%d, want 2/1", f.inserts, f.patches)
	}
}

func TestConnectUnknownCalendar(t *testing.T) {
	f := &fakeCalendar{events: map[string]*calendar.Event{}}
	if _, err := connectFake(t, f, "Missing"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("Connect err = %v, want not found", err)
	}
}

func TestTokenFileRoundTrip(t *testing.T) {
	path := t.TempDir() + "/tok/token.json"
	if _, err := tokenFromFile(path); !errors.Is(err, ErrNoToken) {
		t.Fatalf("tokenFromFile(missing) err = %v, want ErrNoToken", err)
	}
	if err := saveToken(path, &oauth2.Token{AccessToken: "a", RefreshToken: "r"}); err != nil {
		t.Fatalf("saveToken: %v", err)
	}
	tok, err := tokenFromFile(path)
	if err != nil {
		t.Fatalf("tokenFromFile: %v", err)
	}
	if tok.AccessToken != "a" || tok.RefreshToken != "r" {
		t.Fatalf("token = %+v", tok)
	}
}
