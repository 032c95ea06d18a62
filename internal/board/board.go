// Package board holds the three-column kanban state and its transitions.
// Every mutation is synchronous and reports whether the board changed, so
// callers only schedule a save on a real change. Unknown ids and invalid
// input are silent no-ops.
package board

import (
	"strings"

	"github.com/theirongolddev/pmx/internal/ident"
	"github.com/theirongolddev/pmx/internal/model"
)

// Store owns one board.
type Store struct {
	board model.Board
	ids   *ident.Generator
}

// Counts holds per-column and total task counts.
type Counts struct {
	Todo       int
	InProgress int
	Done       int
	Total      int
}

// New returns a Store seeded with a copy of b.
func New(b model.Board, ids *ident.Generator) *Store {
	if ids == nil {
		ids = ident.New(nil)
	}
	return &Store{board: b.Clone(), ids: ids}
}

// Snapshot returns a deep copy of the current board.
func (s *Store) Snapshot() model.Board {
	return s.board.Clone()
}

// Reset replaces the whole board, e.g. after loading a project.
func (s *Store) Reset(b model.Board) {
	s.board = b.Clone()
}

// Column returns a copy of one column's tasks.
func (s *Store) Column(c model.ColumnID) []model.Task {
	col := s.board.Column(c)
	if col == nil {
		return nil
	}
	out := make([]model.Task, len(*col))
	copy(out, *col)
	return out
}

// Find reports which column holds id.
func (s *Store) Find(id model.TaskID) (model.ColumnID, bool) {
	for _, c := range model.Columns {
		if indexOf(*s.board.Column(c), id) >= 0 {
			return c, true
		}
	}
	return "", false
}

// Move takes the task with id out of from and appends it to to.
func (s *Store) Move(id model.TaskID, from, to model.ColumnID) bool {
	if from == to || !from.Valid() || !to.Valid() {
		return false
	}
	src := s.board.Column(from)
	i := indexOf(*src, id)
	if i < 0 {
		return false
	}
	task := (*src)[i]
	*src = append((*src)[:i:i], (*src)[i+1:]...)
	dst := s.board.Column(to)
	*dst = append(*dst, task)
	return true
}

// MoveDir moves a task one column left (dir < 0) or right (dir > 0). Moving
// past either edge is a no-op.
func (s *Store) MoveDir(id model.TaskID, from model.ColumnID, dir int) bool {
	idx := -1
	for i, c := range model.Columns {
		if c == from {
			idx = i
		}
	}
	if idx < 0 || dir == 0 {
		return false
	}
	next := idx + 1
	if dir < 0 {
		next = idx - 1
	}
	if next < 0 || next >= len(model.Columns) {
		return false
	}
	return s.Move(id, from, model.Columns[next])
}

// Add appends a new task to todo. An empty title after trimming is rejected.
func (s *Store) Add(title, ownerEmail string) (model.Task, bool) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Task{}, false
	}
	t := model.Task{
		ID:         model.TaskID(s.ids.Next("task")),
		Title:      title,
		OwnerEmail: strings.TrimSpace(ownerEmail),
	}
	s.board.Todo = append(s.board.Todo, t)
	return t, true
}

// Remove deletes id from list if present.
func (s *Store) Remove(id model.TaskID, list model.ColumnID) bool {
	col := s.board.Column(list)
	if col == nil {
		return false
	}
	i := indexOf(*col, id)
	if i < 0 {
		return false
	}
	*col = append((*col)[:i:i], (*col)[i+1:]...)
	return true
}

// Import appends generated tasks to todo. Tasks whose id is already on the
// board are skipped, as are tasks with no title. A task with no id gets one.
// It returns how many tasks were added.
func (s *Store) Import(tasks []model.Task) int {
	added := 0
	for _, t := range tasks {
		t.Title = strings.TrimSpace(t.Title)
		if t.Title == "" {
			continue
		}
		if t.ID == "" {
			t.ID = model.TaskID(s.ids.Next("task"))
		}
		if _, ok := s.Find(t.ID); ok {
			continue
		}
		s.board.Todo = append(s.board.Todo, t)
		added++
	}
	return added
}

// Counts returns the per-column and total counts.
func (s *Store) Counts() Counts {
	c := Counts{
		Todo:       len(s.board.Todo),
		InProgress: len(s.board.InProgress),
		Done:       len(s.board.Done),
	}
	c.Total = c.Todo + c.InProgress + c.Done
	return c
}

func indexOf(tasks []model.Task, id model.TaskID) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
