package board

import (
	"reflect"
	"testing"
	"time"

	"github.com/theirongolddev/pmx/internal/clock"
	"github.com/theirongolddev/pmx/internal/ident"
	"github.com/theirongolddev/pmx/internal/model"
)

func newStore() *Store {
	b := model.Board{
		Todo:       []model.Task{{ID: "1", Title: "one"}, {ID: "2", Title: "two"}},
		InProgress: []model.Task{{ID: "3", Title: "three"}},
		Done:       []model.Task{},
	}
	return New(b, ident.New(clock.NewFake(time.Unix(1700000000, 0))))
}

func TestMoveBetweenColumns(t *testing.T) {
	for _, from := range model.Columns {
		for _, to := range model.Columns {
			if from == to {
				continue
			}
			s := newStore()
			col := s.Column(from)
			if len(col) == 0 {
				continue
			}
			id := col[0].ID
			before := s.Counts().Total

			if !s.Move(id, from, to) {
				t.Fatalf("Move(%s, %s, %s) = false, want true", id, from, to)
			}
			if got := count(s.Column(from), id); got != 0 {
				t.Fatalf("task %s still in %s (%d times)", id, from, got)
			}
			if got := count(s.Column(to), id); got != 1 {
				t.Fatalf("task %s in %s %d times, want 1", id, to, got)
			}
			dst := s.Column(to)
			if dst[len(dst)-1].ID != id {
				t.Fatalf("moved task not appended to end of %s", to)
			}
			if after := s.Counts().Total; after != before {
				t.Fatalf("Total = %d after move, want %d", after, before)
			}
		}
	}
}

func TestMoveSameColumnIsNoop(t *testing.T) {
	s := newStore()
	before := s.Snapshot()
	if s.Move("1", model.Todo, model.Todo) {
		t.Fatal("Move(same column) = true, want false")
	}
	if !reflect.DeepEqual(s.Snapshot(), before) {
		t.Fatalf("board changed: %+v", s.Snapshot())
	}
}

func TestMoveWrongSourceIsNoop(t *testing.T) {
	s := newStore()
	before := s.Snapshot()
	if s.Move("3", model.Todo, model.Done) {
		t.Fatal("Move from a column that lacks the task = true, want false")
	}
	if !reflect.DeepEqual(s.Snapshot(), before) {
		t.Fatalf("board changed: %+v", s.Snapshot())
	}
}

func TestMoveDirEdges(t *testing.T) {
	s := newStore()
	if s.MoveDir("1", model.Todo, -1) {
		t.Fatal("MoveDir left from todo = true, want false")
	}
	if !s.MoveDir("1", model.Todo, 1) {
		t.Fatal("MoveDir right from todo = false, want true")
	}
	if c, _ := s.Find("1"); c != model.InProgress {
		t.Fatalf("Find(1) = %s, want inprogress", c)
	}
	s.MoveDir("1", model.InProgress, 1)
	if s.MoveDir("1", model.Done, 1) {
		t.Fatal("MoveDir right from done = true, want false")
	}
}

func TestAdd(t *testing.T) {
	s := newStore()
	if _, ok := s.Add("   ", ""); ok {
		t.Fatal("Add(blank) = true, want false")
	}
	task, ok := s.Add("  write docs ", "pm@example.com")
	if !ok {
		t.Fatal("Add = false, want true")
	}
	if task.Title != "write docs" {
		t.Fatalf("Title = %q, want %q", task.Title, "write docs")
	}
	todo := s.Column(model.Todo)
	if todo[len(todo)-1].ID != task.ID {
		t.Fatal("new task not at end of todo")
	}
	other, _ := s.Add("second", "")
	if other.ID == task.ID {
		t.Fatalf("Add produced duplicate id %q", task.ID)
	}
}

func TestRemoveMissingIsNoop(t *testing.T) {
	s := newStore()
	before := s.Snapshot()
	if s.Remove("nope", model.Todo) {
		t.Fatal("Remove(unknown) = true, want false")
	}
	if s.Remove("3", model.Todo) {
		t.Fatal("Remove from wrong column = true, want false")
	}
	if !reflect.DeepEqual(s.Snapshot(), before) {
		t.Fatalf("board changed: %+v", s.Snapshot())
	}
	if !s.Remove("3", model.InProgress) {
		t.Fatal("Remove(3) = false, want true")
	}
	if got := s.Counts(); got.InProgress != 0 || got.Total != 2 {
		t.Fatalf("Counts = %+v, want InProgress 0 Total 2", got)
	}
}

func TestImportSkipsExistingIDs(t *testing.T) {
	s := newStore()
	n := s.Import([]model.Task{
		{ID: "3", Title: "dup from in-progress"},
		{ID: "10", Title: "new"},
		{Title: "no id"},
		{ID: "11", Title: "  "},
	})
	if n != 2 {
		t.Fatalf("Import added %d, want 2", n)
	}
	if got := s.Counts(); got.Todo != 4 || got.Total != 5 {
		t.Fatalf("Counts = %+v, want Todo 4 Total 5", got)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := newStore()
	snap := s.Snapshot()
	snap.Todo[0].Title = "mutated"
	if s.Column(model.Todo)[0].Title != "one" {
		t.Fatal("Snapshot aliased store state")
	}
}

func count(tasks []model.Task, id model.TaskID) int {
	n := 0
	for _, t := range tasks {
		if t.ID == id {
			n++
		}
	}
	return n
}
