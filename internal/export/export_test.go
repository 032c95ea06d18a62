package export

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/pmx/internal/model"
)

func TestWriteReadRoundTrip(t *testing.T) {
	p := model.Project{
		ID:    "0190-abc",
		Owner: "pm@example.com",
		ProjectFields: model.ProjectFields{
			Name:     "Depot",
			Budget:   "150,000",
			Duration: 20,
			Type:     "Construction",
			WBS:      []model.Phase{{ID: "1", Name: "Survey", StartWeek: 0, DurationWeeks: 3, Items: []string{"1.1 walk"}}},
			Risks:    []model.Risk{{ID: "R1", Description: "rain", Impact: "High", Probability: "Low"}},
			Kanban: model.Board{
				Todo:       []model.Task{{ID: "1", Title: "survey"}},
				InProgress: []model.Task{},
				Done:       []model.Task{{ID: "2", Title: "permit", OwnerEmail: "a@b.c"}},
			},
			Schedule:    []model.CalendarEvent{{ID: "e1", Title: "pour", Date: "2024-07-01", StartTime: "07:00", Color: "yellow"}},
			BudgetItems: []model.BudgetItem{{ID: "b1", Category: "Materials", Description: "concrete", Planned: 9000, Actual: 9500.5}},
		},
		CreatedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	if err := Write(&buf, p, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), "version: 1") {
		t.Fatalf("document missing version:\n%s", buf.String())
	}

	doc, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !reflect.DeepEqual(doc.Project, p) {
		t.Fatalf("round trip =\n%+v\nwant\n%+v", doc.Project, p)
	}
}

func TestReadDedupesBoard(t *testing.T) {
	in := `version: 1
project:
  name: dup
  kanban:
    todo:
      - id: "1"
        title: a
    inprogress:
      - id: "1"
        title: a again
      - id: "2"
        title: b
`
	doc, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	k := doc.Project.Kanban
	if len(k.Todo) != 1 || len(k.InProgress) != 1 || k.InProgress[0].ID != "2" {
		t.Fatalf("board = %+v, want task 1 only in todo", k)
	}
	if k.Done == nil || doc.Project.Schedule == nil {
		t.Fatal("missing lists decoded as nil")
	}
}

func TestReadRejectsBadVersion(t *testing.T) {
	for _, in := range []string{"project: {}\n", "version: 99\n", ""} {
		if _, err := Read(strings.NewReader(in)); err == nil {
			t.Fatalf("Read(%q) err = nil, want error", in)
		}
	}
}
