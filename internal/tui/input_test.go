package tui

import "testing"

func TestParseTaskInput(t *testing.T) {
	tests := []struct {
		in, title, owner string
	}{
		{"Order switches", "Order switches", ""},
		{"Order switches @lee@example.com", "Order switches", "lee@example.com"},
		{"@lee@example.com", "@lee@example.com", ""},
		{"Email @ ops", "Email @ ops", ""},
	}
	for _, tt := range tests {
		title, owner := parseTaskInput(tt.in)
		if title != tt.title || owner != tt.owner {
			t.Fatalf("parseTaskInput(%q) = %q, %q, want %q, %q", tt.in, title, owner, tt.title, tt.owner)
		}
	}
}

func TestParseEventInput(t *testing.T) {
	tests := []struct {
		in   string
		want eventInput
		ok   bool
	}{
		{"Kickoff", eventInput{title: "Kickoff"}, true},
		{"09:00 Standup", eventInput{title: "Standup", start: "09:00"}, true},
		{"09:00-10:30 Site walk #red", eventInput{title: "Site walk", start: "09:00", end: "10:30", color: "red"}, true},
		{"Review #purple", eventInput{title: "Review", color: "accent"}, true},
		{"25:00 Late", eventInput{title: "25:00 Late"}, true},
		{"09:00", eventInput{start: "09:00"}, false},
		{"", eventInput{}, false},
	}
	for _, tt := range tests {
		got, ok := parseEventInput(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Fatalf("parseEventInput(%q) = %+v, %v, want %+v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseBudgetInput(t *testing.T) {
	got, ok := parseBudgetInput("labor; Field crew; 12,000; $3,500.50")
	if !ok {
		t.Fatal("parseBudgetInput rejected a full line")
	}
	want := budgetInput{category: "Labor", description: "Field crew", planned: 12000, actual: 3500.5}
	if got != want {
		t.Fatalf("parseBudgetInput = %+v, want %+v", got, want)
	}

	got, ok = parseBudgetInput("Snacks; Team lunch; 200")
	if !ok || got.category != "Other" || got.actual != 0 {
		t.Fatalf("parseBudgetInput(unknown category) = %+v, %v", got, ok)
	}

	for _, in := range []string{"Labor; Field crew", "Labor;  ; 100", ""} {
		if _, ok := parseBudgetInput(in); ok {
			t.Fatalf("parseBudgetInput(%q) accepted", in)
		}
	}
}
