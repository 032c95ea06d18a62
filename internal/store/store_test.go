package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/theirongolddev/pmx/internal/clock"
	"github.com/theirongolddev/pmx/internal/model"
)

func sampleFields() model.ProjectFields {
	return model.ProjectFields{
		Name:     "Data Center Move",
		Budget:   "150,000",
		Duration: 12,
		Type:     "Infrastructure",
		WBS:      []model.Phase{{ID: "1", Name: "Plan", StartWeek: 0, DurationWeeks: 2, Items: []string{"1.1 scope"}}},
		Risks:    []model.Risk{{ID: "R1", Description: "late gear", Impact: "High"}},
		Kanban: model.Board{
			Todo:       []model.Task{{ID: "1", Title: "rack"}, {ID: "task-2", Title: "cable"}},
			InProgress: []model.Task{{ID: "3", Title: "power"}},
			Done:       []model.Task{},
		},
		Schedule:    []model.CalendarEvent{{ID: "e1", Title: "cutover", Date: "2024-06-01", Color: "red"}},
		BudgetItems: []model.BudgetItem{{ID: "b1", Category: "Equipment", Description: "racks", Planned: 100, Actual: 120}},
		WBSAdded:    []string{"1.1 scope"},
	}
}

// runStoreSuite exercises the Store contract against any backend.
func runStoreSuite(t *testing.T, s Store, fake *clock.Fake) {
	t.Helper()
	ctx := context.Background()
	owner := "pm@example.com"

	created, err := s.Save(ctx, owner, "", sampleFields())
	if err != nil {
		t.Fatalf("Save(new): %v", err)
	}
	if created.ID == "" {
		t.Fatal("Save(new) returned empty id")
	}
	if !reflect.DeepEqual(created.ProjectFields, sampleFields()) {
		t.Fatalf("round trip fields = %+v\nwant %+v", created.ProjectFields, sampleFields())
	}

	fake.Advance(time.Second)
	second, err := s.Save(ctx, owner, "", model.ProjectFields{Name: "Second"})
	if err != nil {
		t.Fatalf("Save(second): %v", err)
	}
	if second.Kanban.Todo == nil || second.Schedule == nil {
		t.Fatalf("empty record decoded nil lists: %+v", second.ProjectFields)
	}

	list, err := s.List(ctx, owner)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID {
		t.Fatalf("List order = %v, want second first", ids(list))
	}

	// Updating the first project moves it to the front.
	fake.Advance(time.Second)
	f := sampleFields()
	f.Kanban.Done = append(f.Kanban.Done, model.Task{ID: "9", Title: "shipped"})
	updated, err := s.Save(ctx, owner, created.ID, f)
	if err != nil {
		t.Fatalf("Save(update): %v", err)
	}
	if updated.ID != created.ID || len(updated.Kanban.Done) != 1 {
		t.Fatalf("update = %+v, want same id with one done task", updated)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("UpdatedAt = %v, want after %v", updated.UpdatedAt, created.UpdatedAt)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("CreatedAt changed: %v -> %v", created.CreatedAt, updated.CreatedAt)
	}
	list, _ = s.List(ctx, owner)
	if list[0].ID != created.ID {
		t.Fatalf("List order after update = %v, want %s first", ids(list), created.ID)
	}

	if other, _ := s.List(ctx, "someone@else"); len(other) != 0 {
		t.Fatalf("List(other owner) = %v, want none", ids(other))
	}
	if _, err := s.Get(ctx, "someone@else", created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(other owner) err = %v, want ErrNotFound", err)
	}
	if _, err := s.Save(ctx, owner, "missing", f); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Save(missing id) err = %v, want ErrNotFound", err)
	}

	if err := s.Delete(ctx, owner, second.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, owner, second.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete twice err = %v, want ErrNotFound", err)
	}
	list, _ = s.List(ctx, owner)
	if len(list) != 1 {
		t.Fatalf("List after delete = %v, want one", ids(list))
	}

	n, err := s.Note(ctx, owner)
	if err != nil || n.Content != "" {
		t.Fatalf("Note(empty) = %+v, %v, want empty note", n, err)
	}
	if _, err := s.SaveNote(ctx, owner, "first"); err != nil {
		t.Fatalf("SaveNote: %v", err)
	}
	if _, err := s.SaveNote(ctx, owner, "second"); err != nil {
		t.Fatalf("SaveNote(upsert): %v", err)
	}
	n, err = s.Note(ctx, owner)
	if err != nil || n.Content != "second" {
		t.Fatalf("Note = %+v, %v, want content second", n, err)
	}
}

func ids(ps []model.Project) []string {
	var out []string
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestSQLiteStore(t *testing.T) {
	fake := clock.NewFake(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "pmx.db"), fake)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer func() { _ = s.Close() }()
	runStoreSuite(t, s, fake)
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pmx.db")
	s, err := OpenSQLite(path, nil)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	p, err := s.Save(context.Background(), "me", "", sampleFields())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	_ = s.Close()

	s, err = OpenSQLite(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = s.Close() }()
	got, err := s.Get(context.Background(), "me", p.ID)
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if got.Name != "Data Center Move" {
		t.Fatalf("Name = %q, want %q", got.Name, "Data Center Move")
	}
}

func TestSQLiteUpgradesOlderSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pmx.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	// The projects table as first released, before wbs_added.
	_, err = db.Exec(`CREATE TABLE projects (
		id TEXT PRIMARY KEY, user_id TEXT NOT NULL,
		project_name TEXT NOT NULL DEFAULT '', budget TEXT NOT NULL DEFAULT '',
		duration INTEGER NOT NULL DEFAULT 0, project_type TEXT NOT NULL DEFAULT '',
		objective TEXT NOT NULL DEFAULT '', constraints TEXT NOT NULL DEFAULT '',
		charter TEXT NOT NULL DEFAULT '', wbs TEXT NOT NULL DEFAULT '[]',
		risks TEXT NOT NULL DEFAULT '[]', kanban TEXT NOT NULL DEFAULT '{}',
		schedule TEXT NOT NULL DEFAULT '[]', budget_items TEXT NOT NULL DEFAULT '[]',
		created_at INTEGER NOT NULL, updated_at INTEGER NOT NULL);
		INSERT INTO projects (id, user_id, project_name, created_at, updated_at)
		VALUES ('old', 'me', 'Legacy', 1, 1);`)
	if err != nil {
		t.Fatalf("creating old schema: %v", err)
	}
	_ = db.Close()

	s, err := OpenSQLite(path, nil)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer func() { _ = s.Close() }()
	ctx := context.Background()
	got, err := s.Get(ctx, "me", "old")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Legacy" || got.WBSAdded == nil || len(got.WBSAdded) != 0 {
		t.Fatalf("upgraded record = %+v", got.ProjectFields)
	}
	got.WBSAdded = []string{"1.1 scope"}
	saved, err := s.Save(ctx, "me", "old", got.ProjectFields)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(saved.WBSAdded) != 1 || saved.WBSAdded[0] != "1.1 scope" {
		t.Fatalf("WBSAdded = %v, want [1.1 scope]", saved.WBSAdded)
	}
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("PMX_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("PMX_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	fake := clock.NewFake(time.Now().UTC())
	s, err := OpenPostgres(ctx, dsn, fake)
	if err != nil {
		t.Fatalf("OpenPostgres: %v", err)
	}
	defer func() { _ = s.Close() }()
	if _, err := s.pool.Exec(ctx, "DELETE FROM projects; DELETE FROM notes"); err != nil {
		t.Fatalf("reset tables: %v", err)
	}
	runStoreSuite(t, s, fake)
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), Options{Driver: "mongo"}); err == nil {
		t.Fatal("Open(mongo) err = nil, want error")
	}
	if _, err := Open(context.Background(), Options{Driver: DriverPostgres}); err == nil {
		t.Fatal("Open(postgres, no DSN) err = nil, want error")
	}
}
