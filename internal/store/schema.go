package store

// Timestamps are unix nanoseconds so ORDER BY updated_at is exact.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS projects (
    id                   TEXT PRIMARY KEY,
    user_id              TEXT NOT NULL,
    project_name         TEXT NOT NULL DEFAULT '',
    budget               TEXT NOT NULL DEFAULT '',
    duration             INTEGER NOT NULL DEFAULT 0,
    project_type         TEXT NOT NULL DEFAULT '',
    objective            TEXT NOT NULL DEFAULT '',
    constraints          TEXT NOT NULL DEFAULT '',
    charter              TEXT NOT NULL DEFAULT '',
    wbs                  TEXT NOT NULL DEFAULT '[]',
    risks                TEXT NOT NULL DEFAULT '[]',
    kanban               TEXT NOT NULL DEFAULT '{}',
    schedule             TEXT NOT NULL DEFAULT '[]',
    budget_items         TEXT NOT NULL DEFAULT '[]',
    wbs_added            TEXT NOT NULL DEFAULT '[]',
    created_at           INTEGER NOT NULL,
    updated_at           INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS notes (
    user_id              TEXT PRIMARY KEY,
    content              TEXT NOT NULL DEFAULT '',
    updated_at           INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_projects_owner_updated ON projects(user_id, updated_at DESC);
`

// Columns added after the first release, for databases created before them.
// SQLite has no ADD COLUMN IF NOT EXISTS, so its list is checked first.
var sqliteAddedColumns = []struct{ name, ddl string }{
	{"wbs_added", "ALTER TABLE projects ADD COLUMN wbs_added TEXT NOT NULL DEFAULT '[]'"},
}

const pgSchemaSQL = `
CREATE TABLE IF NOT EXISTS projects (
    id                   TEXT PRIMARY KEY,
    user_id              TEXT NOT NULL,
    project_name         TEXT NOT NULL DEFAULT '',
    budget               TEXT NOT NULL DEFAULT '',
    duration             INTEGER NOT NULL DEFAULT 0,
    project_type         TEXT NOT NULL DEFAULT '',
    objective            TEXT NOT NULL DEFAULT '',
    constraints          TEXT NOT NULL DEFAULT '',
    charter              TEXT NOT NULL DEFAULT '',
    wbs                  JSONB NOT NULL DEFAULT '[]',
    risks                JSONB NOT NULL DEFAULT '[]',
    kanban               JSONB NOT NULL DEFAULT '{}',
    schedule             JSONB NOT NULL DEFAULT '[]',
    budget_items         JSONB NOT NULL DEFAULT '[]',
    wbs_added            JSONB NOT NULL DEFAULT '[]',
    created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS notes (
    user_id              TEXT PRIMARY KEY,
    content              TEXT NOT NULL DEFAULT '',
    updated_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

ALTER TABLE projects ADD COLUMN IF NOT EXISTS wbs_added JSONB NOT NULL DEFAULT '[]';

CREATE INDEX IF NOT EXISTS idx_projects_owner_updated ON projects(user_id, updated_at DESC);
`
