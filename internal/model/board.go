// Package model defines the project, board, schedule, and budget types shared
// by the stores, persistence, and transports.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ColumnID names one of the three kanban lists. Membership is status.
type ColumnID string

// Kanban columns in display order.
const (
	Todo       ColumnID = "todo"
	InProgress ColumnID = "inprogress"
	Done       ColumnID = "done"
)

// Columns lists every column left to right.
var Columns = []ColumnID{Todo, InProgress, Done}

// Valid reports whether c is one of the three board columns.
func (c ColumnID) Valid() bool {
	switch c {
	case Todo, InProgress, Done:
		return true
	}
	return false
}

// Label returns the human-readable column name.
func (c ColumnID) Label() string {
	switch c {
	case Todo:
		return "To Do"
	case InProgress:
		return "In Progress"
	case Done:
		return "Done"
	}
	return string(c)
}

// ParseColumn accepts the canonical ids plus a few spellings people type.
func ParseColumn(s string) (ColumnID, bool) {
	switch s {
	case "todo", "to-do", "to_do":
		return Todo, true
	case "inprogress", "in-progress", "in_progress", "doing", "progress":
		return InProgress, true
	case "done", "complete", "completed":
		return Done, true
	}
	return "", false
}

// ID is compared by string value. Generated plans carry numeric ids where the
// board carries string ids, so both decode into the same form.
type ID string

// TaskID identifies a board task.
type TaskID = ID

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	if i, err := n.Int64(); err == nil {
		*id = ID(strconv.FormatInt(i, 10))
		return nil
	}
	*id = ID(n.String())
	return nil
}

// Task is one card on the board.
type Task struct {
	ID         TaskID `json:"id" yaml:"id"`
	Title      string `json:"title" yaml:"title"`
	OwnerEmail string `json:"ownerEmail,omitempty" yaml:"owner_email,omitempty"`
}

// Board holds the three ordered task lists. Its JSON shape is the persisted
// "kanban" sub-field.
type Board struct {
	Todo       []Task `json:"todo" yaml:"todo"`
	InProgress []Task `json:"inprogress" yaml:"inprogress"`
	Done       []Task `json:"done" yaml:"done"`
}

// Column returns a pointer to the list for c, or nil for an unknown column.
func (b *Board) Column(c ColumnID) *[]Task {
	switch c {
	case Todo:
		return &b.Todo
	case InProgress:
		return &b.InProgress
	case Done:
		return &b.Done
	}
	return nil
}

// Clone returns a deep copy with non-nil lists.
func (b Board) Clone() Board {
	return Board{
		Todo:       cloneTasks(b.Todo),
		InProgress: cloneTasks(b.InProgress),
		Done:       cloneTasks(b.Done),
	}
}

func cloneTasks(in []Task) []Task {
	out := make([]Task, len(in))
	copy(out, in)
	return out
}
