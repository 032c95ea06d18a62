package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/theirongolddev/pmx/internal/clock"
	"github.com/theirongolddev/pmx/internal/ident"
	"github.com/theirongolddev/pmx/internal/model"
)

// Postgres is the hosted backend. Sub-fields are JSONB columns.
type Postgres struct {
	pool  *pgxpool.Pool
	clock clock.Clock
}

// OpenPostgres connects to dsn and ensures the schema exists.
func OpenPostgres(ctx context.Context, dsn string, c clock.Clock) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	s := NewPostgres(pool, c)
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgres wraps an existing pool.
func NewPostgres(pool *pgxpool.Pool, c clock.Clock) *Postgres {
	if c == nil {
		c = clock.System{}
	}
	return &Postgres{pool: pool, clock: c}
}

// EnsureSchema creates the tables if they don't exist.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, pgSchemaSQL); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}

func (s *Postgres) now() time.Time {
	return s.clock.Now().UTC().Truncate(time.Microsecond)
}

// Save implements Store.
func (s *Postgres) Save(ctx context.Context, owner, id string, f model.ProjectFields) (model.Project, error) {
	b, err := encodeBlobs(f)
	if err != nil {
		return model.Project{}, err
	}
	now := s.now()

	if id == "" {
		id, err = ident.ProjectID()
		if err != nil {
			return model.Project{}, err
		}
		_, err = s.pool.Exec(ctx, `
			INSERT INTO projects (`+projectColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::jsonb, $11::jsonb, $12::jsonb, $13::jsonb, $14::jsonb, $15::jsonb, $16, $17)`,
			id, owner, f.Name, f.Budget, int(f.Duration), f.Type,
			f.Objective, f.Constraints, f.Charter,
			string(b.WBS), string(b.Risks), string(b.Kanban), string(b.Schedule), string(b.BudgetItems),
			string(b.WBSAdded), now, now)
		if err != nil {
			return model.Project{}, fmt.Errorf("create project: %w", err)
		}
		return s.Get(ctx, owner, id)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE projects SET
			project_name = $1, budget = $2, duration = $3, project_type = $4,
			objective = $5, constraints = $6, charter = $7,
			wbs = $8::jsonb, risks = $9::jsonb, kanban = $10::jsonb,
			schedule = $11::jsonb, budget_items = $12::jsonb,
			wbs_added = $13::jsonb, updated_at = $14
		WHERE id = $15 AND user_id = $16`,
		f.Name, f.Budget, int(f.Duration), f.Type,
		f.Objective, f.Constraints, f.Charter,
		string(b.WBS), string(b.Risks), string(b.Kanban), string(b.Schedule), string(b.BudgetItems),
		string(b.WBSAdded), now, id, owner)
	if err != nil {
		return model.Project{}, fmt.Errorf("update project %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return model.Project{}, fmt.Errorf("update project %s: %w", id, ErrNotFound)
	}
	return s.Get(ctx, owner, id)
}

// Get implements Store.
func (s *Postgres) Get(ctx context.Context, owner, id string) (model.Project, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+projectColumns+`
		FROM projects WHERE id = $1 AND user_id = $2`, id, owner)
	p, err := scanPgProject(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Project{}, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Project{}, fmt.Errorf("get project %s: %w", id, err)
	}
	return p, nil
}

// List implements Store.
func (s *Postgres) List(ctx context.Context, owner string) ([]model.Project, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+projectColumns+`
		FROM projects WHERE user_id = $1 ORDER BY updated_at DESC, id`, owner)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var out []model.Project
	for rows.Next() {
		p, err := scanPgProject(rows)
		if err != nil {
			return nil, fmt.Errorf("list projects: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Delete implements Store.
func (s *Postgres) Delete(ctx context.Context, owner, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1 AND user_id = $2`, id, owner)
	if err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete project %s: %w", id, ErrNotFound)
	}
	return nil
}

// Note implements Store.
func (s *Postgres) Note(ctx context.Context, owner string) (model.Note, error) {
	n := model.Note{Owner: owner}
	err := s.pool.QueryRow(ctx, `SELECT content, updated_at FROM notes WHERE user_id = $1`, owner).
		Scan(&n.Content, &n.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return n, nil
	}
	if err != nil {
		return n, fmt.Errorf("get notes: %w", err)
	}
	n.UpdatedAt = n.UpdatedAt.UTC()
	return n, nil
}

// SaveNote implements Store.
func (s *Postgres) SaveNote(ctx context.Context, owner, content string) (model.Note, error) {
	now := s.now()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO notes (user_id, content, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET content = EXCLUDED.content, updated_at = EXCLUDED.updated_at`,
		owner, content, now)
	if err != nil {
		return model.Note{}, fmt.Errorf("save notes: %w", err)
	}
	return model.Note{Owner: owner, Content: content, UpdatedAt: now}, nil
}

func scanPgProject(row pgx.Row) (model.Project, error) {
	var p model.Project
	var duration int
	var b blobs
	err := row.Scan(&p.ID, &p.Owner, &p.Name, &p.Budget, &duration, &p.Type,
		&p.Objective, &p.Constraints, &p.Charter,
		&b.WBS, &b.Risks, &b.Kanban, &b.Schedule, &b.BudgetItems,
		&b.WBSAdded, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, err
	}
	p.Duration = model.Weeks(duration)
	decodeBlobs(b, &p.ProjectFields)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}
