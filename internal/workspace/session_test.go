package workspace

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/theirongolddev/pmx/internal/model"
	"github.com/theirongolddev/pmx/internal/plan"
	"github.com/theirongolddev/pmx/internal/store"
)

// countingStore wraps a real store and counts saves.
type countingStore struct {
	store.Store
	mu    sync.Mutex
	saves int
	fail  error
}

func (c *countingStore) Save(ctx context.Context, owner, id string, f model.ProjectFields) (model.Project, error) {
	c.mu.Lock()
	c.saves++
	fail := c.fail
	c.mu.Unlock()
	if fail != nil {
		return model.Project{}, fail
	}
	return c.Store.Save(ctx, owner, id, f)
}

func (c *countingStore) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saves
}

func newTestStore(t *testing.T) *countingStore {
	t.Helper()
	s, err := store.OpenSQLite(filepath.Join(t.TempDir(), "pmx.db"), nil)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return &countingStore{Store: s}
}

func TestNoopMutationsDoNotSchedule(t *testing.T) {
	st := newTestStore(t)
	s := New(st, "me", Options{Delay: time.Hour})

	s.AddTask("  ", "")
	s.MoveTask("missing", model.Todo, model.Done)
	s.RemoveTask("missing", model.Todo)
	s.DeleteEvent("missing")
	s.DeleteBudgetItem("missing")
	s.AddEvent("2024-01-01", "", "red", "", "")
	if s.Pending() {
		t.Fatal("Pending = true after only no-op mutations")
	}
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if st.count() != 0 {
		t.Fatalf("saves = %d, want 0", st.count())
	}
}

func TestEditsCoalesceIntoOneCreate(t *testing.T) {
	st := newTestStore(t)
	s := New(st, "me", Options{Delay: time.Hour})
	s.SetForm(Form{Name: "Office Move", Budget: "50,000", Duration: 8, Type: "Other"})
	task, _ := s.AddTask("book movers", "")
	s.MoveTask(task.ID, model.Todo, model.InProgress)
	s.AddBudgetItem("Labor", "movers", 5000, 0)

	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if st.count() != 1 {
		t.Fatalf("saves = %d, want 1", st.count())
	}
	if s.ID() == "" {
		t.Fatal("ID empty after first save")
	}

	// Later edits update the same record.
	s.MoveTask(task.ID, model.InProgress, model.Done)
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	list, err := st.List(context.Background(), "me")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("records = %d, want 1", len(list))
	}
	p := list[0]
	if len(p.Kanban.Done) != 1 || p.Kanban.Done[0].ID != task.ID {
		t.Fatalf("Done = %+v, want the moved task", p.Kanban.Done)
	}
	if p.Budget != "50,000" || len(p.BudgetItems) != 1 {
		t.Fatalf("saved record = %+v", p.ProjectFields)
	}
}

func TestSaveFailureIsReported(t *testing.T) {
	st := newTestStore(t)
	st.fail = errors.New("network down")
	results := make(chan SaveResult, 1)
	s := New(st, "me", Options{Delay: 5 * time.Millisecond, OnSave: func(r SaveResult) { results <- r }})
	s.AddTask("x", "")
	select {
	case r := <-results:
		if r.Err == nil {
			t.Fatal("SaveResult.Err = nil, want failure")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for save result")
	}
	if s.ID() != "" {
		t.Fatalf("ID = %q after failed save, want empty", s.ID())
	}
	// The in-memory state survives the failure.
	if s.Board.Counts().Total != 1 {
		t.Fatalf("Total = %d, want 1", s.Board.Counts().Total)
	}
}

func TestApplyPlanResetsBoardAndAddedSet(t *testing.T) {
	st := newTestStore(t)
	s := New(st, "me", Options{Delay: time.Hour})
	s.AddTask("old", "")

	g := plan.Generated{
		Charter: "# Warehouse Upgrade\n\nOverview",
		WBS:     []model.Phase{{ID: "1", Name: "Plan", Items: []string{"1.1 scope"}}},
		Tasks:   []model.Task{{ID: "1", Title: "scope"}, {ID: "2", Title: "budget"}},
	}
	s.ApplyPlan(g)
	if got := s.Form().Name; got != "Warehouse Upgrade" {
		t.Fatalf("Name = %q, want %q", got, "Warehouse Upgrade")
	}
	if c := s.Board.Counts(); c.Todo != 2 || c.Total != 2 {
		t.Fatalf("Counts = %+v, want 2 generated tasks only", c)
	}

	if _, ok := s.AddWBSItem("1.1 scope"); !ok {
		t.Fatal("AddWBSItem first time = false, want true")
	}
	if _, ok := s.AddWBSItem("1.1 scope"); ok {
		t.Fatal("AddWBSItem second time = true, want false")
	}
	if !s.WBSItemAdded("1.1 scope") {
		t.Fatal("WBSItemAdded = false, want true")
	}

	s.ApplyPlan(g)
	if s.WBSItemAdded("1.1 scope") {
		t.Fatal("added set survived a new plan")
	}
	_ = s.Close(context.Background())
}

func TestOpenLoadsRecord(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	p, err := st.Save(ctx, "me", "", model.ProjectFields{
		Name:   "Loaded",
		Kanban: model.Board{Todo: []model.Task{{ID: "a", Title: "A"}}},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	s, err := Open(ctx, st, "me", p.ID, Options{Delay: time.Hour})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.ID() != p.ID || s.Form().Name != "Loaded" || s.Board.Counts().Todo != 1 {
		t.Fatalf("session = id %q name %q counts %+v", s.ID(), s.Form().Name, s.Board.Counts())
	}
	if _, err := Open(ctx, st, "someone", p.ID, Options{}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Open(other owner) err = %v, want ErrNotFound", err)
	}
}

func TestAddedSetSurvivesReopen(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	s := New(st, "me", Options{Delay: time.Hour})
	s.ApplyPlan(plan.Generated{
		Charter: "# Depot",
		WBS:     []model.Phase{{ID: "1", Name: "Plan", Items: []string{"1.1 scope", "1.2 budget"}}},
	})
	if _, ok := s.AddWBSItem("1.2 budget"); !ok {
		t.Fatal("AddWBSItem = false, want true")
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(ctx, st, "me", s.ID(), Options{Delay: time.Hour})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reopened.Close(ctx)
	if !reopened.WBSItemAdded("1.2 budget") {
		t.Fatal("WBSItemAdded after reopen = false, want true")
	}
	if reopened.WBSItemAdded("1.1 scope") {
		t.Fatal("item never sent reported as added")
	}
	if _, ok := reopened.AddWBSItem("1.2 budget"); ok {
		t.Fatal("item sent to the board twice across sessions")
	}
	if c := reopened.Board.Counts(); c.Todo != 1 {
		t.Fatalf("Counts = %+v, want the one task from the first session", c)
	}
}

func TestSummarize(t *testing.T) {
	projects := []model.Project{
		{ProjectFields: model.ProjectFields{
			Kanban: model.Board{Todo: make([]model.Task, 2), Done: make([]model.Task, 1)},
			Risks:  []model.Risk{{Impact: "High"}, {Impact: "Low"}},
		}},
		{ProjectFields: model.ProjectFields{
			Kanban: model.Board{InProgress: make([]model.Task, 1), Done: make([]model.Task, 1)},
		}},
	}
	st := Summarize(projects)
	if st.Projects != 2 || st.TotalTasks != 5 || st.DoneTasks != 2 || st.InProgress != 1 || st.HighRisks != 1 {
		t.Fatalf("Summarize = %+v", st)
	}
	if got := st.PercentDone(); got != 40 {
		t.Fatalf("PercentDone = %d, want 40", got)
	}
	if got := (Stats{}).PercentDone(); got != 0 {
		t.Fatalf("PercentDone(empty) = %d, want 0", got)
	}
	if tasks, pct := ProjectProgress(projects[0]); tasks != 3 || pct != 33 {
		t.Fatalf("ProjectProgress = %d, %d, want 3, 33", tasks, pct)
	}
}
