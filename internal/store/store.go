// Package store persists project records and notes. Board, schedule, and
// budget state is stored whole as opaque JSON sub-fields; there are no
// entity-level updates. Concurrent writers are last-write-wins.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/theirongolddev/pmx/internal/clock"
	"github.com/theirongolddev/pmx/internal/model"
)

// ErrNotFound is returned when a project id does not exist for the owner.
var ErrNotFound = errors.New("project not found")

// Store is the persistence collaborator.
type Store interface {
	// Save creates a record when id is empty and returns it with its new id.
	// Otherwise it overwrites the fields of the existing record.
	Save(ctx context.Context, owner, id string, f model.ProjectFields) (model.Project, error)
	Get(ctx context.Context, owner, id string) (model.Project, error)
	// List returns the owner's records, most recently updated first.
	List(ctx context.Context, owner string) ([]model.Project, error)
	Delete(ctx context.Context, owner, id string) error
	// Note returns the owner's scratchpad; an owner with none gets an empty note.
	Note(ctx context.Context, owner string) (model.Note, error)
	SaveNote(ctx context.Context, owner, content string) (model.Note, error)
	Close() error
}

// Driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options selects and configures a backend.
type Options struct {
	Driver     string
	SQLitePath string
	DSN        string
	Clock      clock.Clock
}

// Open returns the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "", DriverSQLite:
		s, err := OpenSQLite(opts.SQLitePath, opts.Clock)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverPostgres:
		if opts.DSN == "" {
			return nil, errors.New("postgres store needs a DSN (store.dsn or DATABASE_URL)")
		}
		s, err := OpenPostgres(ctx, opts.DSN, opts.Clock)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}
