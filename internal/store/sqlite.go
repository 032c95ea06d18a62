package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/pmx/internal/clock"
	"github.com/theirongolddev/pmx/internal/ident"
	"github.com/theirongolddev/pmx/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// SQLite is the local single-file backend.
type SQLite struct {
	db    *sql.DB
	clock clock.Clock
}

// OpenSQLite opens or creates the database at dbPath.
func OpenSQLite(dbPath string, c clock.Clock) (*SQLite, error) {
	if c == nil {
		c = clock.System{}
	}
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening project db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	if err := addMissingColumns(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("upgrading schema: %w", err)
	}

	return &SQLite{db: db, clock: c}, nil
}

func addMissingColumns(db *sql.DB) error {
	rows, err := db.Query("SELECT name FROM pragma_table_info('projects')")
	if err != nil {
		return err
	}
	have := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			_ = rows.Close()
			return err
		}
		have[name] = true
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	for _, c := range sqliteAddedColumns {
		if have[c.name] {
			continue
		}
		if _, err := db.Exec(c.ddl); err != nil {
			return fmt.Errorf("adding %s: %w", c.name, err)
		}
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

const projectColumns = `id, user_id, project_name, budget, duration, project_type,
	objective, constraints, charter, wbs, risks, kanban, schedule, budget_items,
	wbs_added, created_at, updated_at`

// Save implements Store.
func (s *SQLite) Save(ctx context.Context, owner, id string, f model.ProjectFields) (model.Project, error) {
	b, err := encodeBlobs(f)
	if err != nil {
		return model.Project{}, err
	}
	now := s.clock.Now().UnixNano()

	if id == "" {
		id, err = ident.ProjectID()
		if err != nil {
			return model.Project{}, err
		}
		_, err = s.db.ExecContext(ctx, `INSERT INTO projects (`+projectColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, owner, f.Name, f.Budget, int(f.Duration), f.Type,
			f.Objective, f.Constraints, f.Charter,
			string(b.WBS), string(b.Risks), string(b.Kanban), string(b.Schedule), string(b.BudgetItems),
			string(b.WBSAdded), now, now,
		)
		if err != nil {
			return model.Project{}, fmt.Errorf("creating project: %w", err)
		}
		return s.Get(ctx, owner, id)
	}

	res, err := s.db.ExecContext(ctx, `UPDATE projects SET
		project_name = ?, budget = ?, duration = ?, project_type = ?,
		objective = ?, constraints = ?, charter = ?,
		wbs = ?, risks = ?, kanban = ?, schedule = ?, budget_items = ?,
		wbs_added = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		f.Name, f.Budget, int(f.Duration), f.Type,
		f.Objective, f.Constraints, f.Charter,
		string(b.WBS), string(b.Risks), string(b.Kanban), string(b.Schedule), string(b.BudgetItems),
		string(b.WBSAdded), now, id, owner,
	)
	if err != nil {
		return model.Project{}, fmt.Errorf("updating project %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.Project{}, fmt.Errorf("updating project %s: %w", id, ErrNotFound)
	}
	return s.Get(ctx, owner, id)
}

// Get implements Store.
func (s *SQLite) Get(ctx context.Context, owner, id string) (model.Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+`
		FROM projects WHERE id = ? AND user_id = ?`, id, owner)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Project{}, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Project{}, fmt.Errorf("reading project %s: %w", id, err)
	}
	return p, nil
}

// List implements Store.
func (s *SQLite) List(ctx context.Context, owner string) ([]model.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+projectColumns+`
		FROM projects WHERE user_id = ? ORDER BY updated_at DESC, id`, owner)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("listing projects: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Delete implements Store.
func (s *SQLite) Delete(ctx context.Context, owner, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ? AND user_id = ?", id, owner)
	if err != nil {
		return fmt.Errorf("deleting project %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("deleting project %s: %w", id, ErrNotFound)
	}
	return nil
}

// Note implements Store.
func (s *SQLite) Note(ctx context.Context, owner string) (model.Note, error) {
	n := model.Note{Owner: owner}
	var updated int64
	err := s.db.QueryRowContext(ctx, "SELECT content, updated_at FROM notes WHERE user_id = ?", owner).
		Scan(&n.Content, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return n, nil
	}
	if err != nil {
		return n, fmt.Errorf("reading notes: %w", err)
	}
	n.UpdatedAt = time.Unix(0, updated).UTC()
	return n, nil
}

// SaveNote implements Store.
func (s *SQLite) SaveNote(ctx context.Context, owner, content string) (model.Note, error) {
	now := s.clock.Now()
	_, err := s.db.ExecContext(ctx, `INSERT INTO notes (user_id, content, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`,
		owner, content, now.UnixNano())
	if err != nil {
		return model.Note{}, fmt.Errorf("saving notes: %w", err)
	}
	return model.Note{Owner: owner, Content: content, UpdatedAt: time.Unix(0, now.UnixNano()).UTC()}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (model.Project, error) {
	var p model.Project
	var duration int
	var wbs, risks, kanban, sched, items, added string
	var created, updated int64
	err := row.Scan(&p.ID, &p.Owner, &p.Name, &p.Budget, &duration, &p.Type,
		&p.Objective, &p.Constraints, &p.Charter,
		&wbs, &risks, &kanban, &sched, &items,
		&added, &created, &updated)
	if err != nil {
		return p, err
	}
	p.Duration = model.Weeks(duration)
	decodeBlobs(blobs{
		WBS:         []byte(wbs),
		Risks:       []byte(risks),
		Kanban:      []byte(kanban),
		Schedule:    []byte(sched),
		BudgetItems: []byte(items),
		WBSAdded:    []byte(added),
	}, &p.ProjectFields)
	p.CreatedAt = time.Unix(0, created).UTC()
	p.UpdatedAt = time.Unix(0, updated).UTC()
	return p, nil
}
