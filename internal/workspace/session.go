// Package workspace ties the in-memory stores of one open project to the
// debounced save pipeline. Mutations update memory first; only mutations
// that change state schedule a save of the whole record.
package workspace

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/theirongolddev/pmx/internal/autosave"
	"github.com/theirongolddev/pmx/internal/board"
	"github.com/theirongolddev/pmx/internal/budget"
	"github.com/theirongolddev/pmx/internal/clock"
	"github.com/theirongolddev/pmx/internal/ident"
	"github.com/theirongolddev/pmx/internal/model"
	"github.com/theirongolddev/pmx/internal/plan"
	"github.com/theirongolddev/pmx/internal/schedule"
	"github.com/theirongolddev/pmx/internal/store"
)

// Form is the editable project header.
type Form struct {
	Name        string
	Budget      string
	Duration    model.Weeks
	Type        string
	Objective   string
	Constraints string
}

// SaveResult reports one completed save.
type SaveResult struct {
	Project model.Project
	Err     error
}

// Options configures a Session.
type Options struct {
	Delay  time.Duration
	Clock  clock.Clock
	Logger *slog.Logger
	// OnSave, when set, receives every save outcome. It runs on the saving
	// goroutine.
	OnSave func(SaveResult)
}

// Session is one open project.
type Session struct {
	st     store.Store
	owner  string
	log    *slog.Logger
	onSave func(SaveResult)

	mu sync.Mutex
	id string

	form    Form
	charter string
	risks   []model.Risk
	wbs     []model.Phase
	added   map[string]bool

	Board    *board.Store
	Schedule *schedule.Store
	Budget   *budget.Ledger

	saver *autosave.Scheduler[model.ProjectFields]
}

// New returns an empty, unsaved session for owner.
func New(st store.Store, owner string, opts Options) *Session {
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	ids := ident.New(opts.Clock)
	s := &Session{
		st:       st,
		owner:    owner,
		log:      opts.Logger,
		onSave:   opts.OnSave,
		added:    make(map[string]bool),
		Board:    board.New(model.Board{}, ids),
		Schedule: schedule.New(nil, ids),
		Budget:   budget.New(nil, ids),
	}
	s.saver = autosave.New(opts.Delay, s.save, nil)
	return s
}

// Open loads project id into a new session.
func Open(ctx context.Context, st store.Store, owner, id string, opts Options) (*Session, error) {
	p, err := st.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	s := New(st, owner, opts)
	s.Load(p)
	return s, nil
}

// Load replaces the session state with p without scheduling a save.
func (s *Session) Load(p model.Project) {
	s.mu.Lock()
	s.id = p.ID
	s.mu.Unlock()
	s.form = Form{
		Name:        p.Name,
		Budget:      p.Budget,
		Duration:    p.Duration,
		Type:        p.Type,
		Objective:   p.Objective,
		Constraints: p.Constraints,
	}
	s.charter = p.Charter
	s.risks = append([]model.Risk{}, p.Risks...)
	s.wbs = p.ProjectFields.Clone().WBS
	s.added = make(map[string]bool, len(p.WBSAdded))
	for _, item := range p.WBSAdded {
		s.added[item] = true
	}
	s.Board.Reset(p.Kanban)
	s.Schedule.Reset(p.Schedule)
	s.Budget.Reset(p.BudgetItems)
}

// ID returns the project id, empty until the first save completes.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Owner returns the session owner.
func (s *Session) Owner() string { return s.owner }

// Form returns the project header fields.
func (s *Session) Form() Form { return s.form }

// Charter returns the generated charter text.
func (s *Session) Charter() string { return s.charter }

// Risks returns a copy of the risk register.
func (s *Session) Risks() []model.Risk { return append([]model.Risk{}, s.risks...) }

// WBS returns the generated phases, which may be empty.
func (s *Session) WBS() []model.Phase {
	return model.ProjectFields{WBS: s.wbs}.Clone().WBS
}

// TotalBudget parses the typed budget text.
func (s *Session) TotalBudget() float64 {
	return budget.ParseAmount(s.form.Budget)
}

// Snapshot returns the whole record as it would be saved.
func (s *Session) Snapshot() model.ProjectFields {
	f := model.ProjectFields{
		Name:        strings.TrimSpace(s.form.Name),
		Budget:      s.form.Budget,
		Duration:    s.form.Duration,
		Type:        s.form.Type,
		Objective:   s.form.Objective,
		Constraints: s.form.Constraints,
		Charter:     s.charter,
		WBS:         s.wbs,
		Risks:       s.risks,
		Kanban:      s.Board.Snapshot(),
		Schedule:    s.Schedule.Snapshot(),
		BudgetItems: s.Budget.Snapshot(),
		WBSAdded:    slices.Sorted(maps.Keys(s.added)),
	}
	if f.Name == "" {
		f.Name = plan.UntitledProject
	}
	return f.Clone()
}

func (s *Session) save(ctx context.Context, f model.ProjectFields) error {
	id := s.ID()
	p, err := s.st.Save(ctx, s.owner, id, f)
	if err != nil {
		s.log.Warn("auto-save failed", "project", id, "error", err)
	} else {
		s.mu.Lock()
		if s.id == "" {
			s.id = p.ID
		}
		s.mu.Unlock()
		s.log.Debug("project saved", "project", p.ID)
	}
	if s.onSave != nil {
		s.onSave(SaveResult{Project: p, Err: err})
	}
	return err
}

func (s *Session) touch(changed bool) bool {
	if changed {
		s.saver.Trigger(s.Snapshot())
	}
	return changed
}

// Touch schedules a save of the current state.
func (s *Session) Touch() { s.touch(true) }

// Pending reports whether a save is waiting for its quiet period.
func (s *Session) Pending() bool { return s.saver.Pending() }

// Flush saves any pending change now.
func (s *Session) Flush(ctx context.Context) error { return s.saver.Flush(ctx) }

// Close flushes pending changes and waits for in-flight saves.
func (s *Session) Close(ctx context.Context) error { return s.saver.Close(ctx) }

// SetForm replaces the header fields.
func (s *Session) SetForm(f Form) bool {
	if f == s.form {
		return false
	}
	s.form = f
	return s.touch(true)
}

// AddTask adds a task to the todo column.
func (s *Session) AddTask(title, ownerEmail string) (model.Task, bool) {
	t, ok := s.Board.Add(title, ownerEmail)
	s.touch(ok)
	return t, ok
}

// MoveTask moves a task between columns.
func (s *Session) MoveTask(id model.TaskID, from, to model.ColumnID) bool {
	return s.touch(s.Board.Move(id, from, to))
}

// MoveTaskDir moves a task one column left or right.
func (s *Session) MoveTaskDir(id model.TaskID, from model.ColumnID, dir int) bool {
	return s.touch(s.Board.MoveDir(id, from, dir))
}

// RemoveTask deletes a task from a column.
func (s *Session) RemoveTask(id model.TaskID, list model.ColumnID) bool {
	return s.touch(s.Board.Remove(id, list))
}

// AddEvent adds a calendar event.
func (s *Session) AddEvent(date, title, color, start, end string) (model.CalendarEvent, bool) {
	e, ok := s.Schedule.AddEvent(date, title, color, start, end)
	s.touch(ok)
	return e, ok
}

// DeleteEvent removes a calendar event.
func (s *Session) DeleteEvent(id string) bool {
	return s.touch(s.Schedule.DeleteEvent(id))
}

// AddBudgetItem adds a ledger line.
func (s *Session) AddBudgetItem(category, description string, planned, actual float64) (model.BudgetItem, bool) {
	it, ok := s.Budget.AddItem(category, description, planned, actual)
	s.touch(ok)
	return it, ok
}

// UpdateBudgetItem replaces a ledger line.
func (s *Session) UpdateBudgetItem(it model.BudgetItem) bool {
	return s.touch(s.Budget.UpdateItem(it))
}

// DeleteBudgetItem removes a ledger line.
func (s *Session) DeleteBudgetItem(id string) bool {
	return s.touch(s.Budget.DeleteItem(id))
}

// ApplyPlan stores a generated charter, risks, and breakdown. The board is
// replaced with the generated starter tasks and the record of WBS items
// already sent to the board is cleared. A blank project name is taken from
// the charter heading.
func (s *Session) ApplyPlan(g plan.Generated) {
	s.charter = g.Charter
	s.risks = append([]model.Risk{}, g.Risks...)
	s.wbs = model.ProjectFields{WBS: g.WBS}.Clone().WBS
	s.added = make(map[string]bool)
	s.Board.Reset(model.Board{})
	s.Board.Import(g.Tasks)
	if strings.TrimSpace(s.form.Name) == "" {
		s.form.Name = plan.TitleFromCharter(g.Charter)
	}
	s.touch(true)
}

// WBSItemAdded reports whether item was already sent to the board.
func (s *Session) WBSItemAdded(item string) bool {
	return s.added[item]
}

// AddWBSItem sends a breakdown item to the board as a new task. Each item is
// sent at most once per plan.
func (s *Session) AddWBSItem(item string) (model.Task, bool) {
	if s.added[item] {
		return model.Task{}, false
	}
	t, ok := s.Board.Add(item, "")
	if !ok {
		return model.Task{}, false
	}
	s.added[item] = true
	s.touch(true)
	return t, true
}
