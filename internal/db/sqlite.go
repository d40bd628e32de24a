package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// sqliteSchema is applied on every open; all statements are idempotent.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sessions (
    id                     TEXT PRIMARY KEY,
    user_id                TEXT NOT NULL DEFAULT '',
    language               TEXT NOT NULL DEFAULT '',
    current_stage          TEXT NOT NULL,
    symptoms               TEXT NOT NULL DEFAULT '[]',
    severity_level         TEXT NOT NULL DEFAULT '',
    emergency_detected     INTEGER NOT NULL DEFAULT 0,
    health_guide_generated INTEGER NOT NULL DEFAULT 0,
    created_at             TEXT NOT NULL,
    updated_at             TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
    seq        INTEGER PRIMARY KEY AUTOINCREMENT,
    id         TEXT NOT NULL UNIQUE,
    session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    sender     TEXT NOT NULL CHECK(sender IN ('user', 'assistant')),
    content    TEXT NOT NULL,
    language   TEXT NOT NULL DEFAULT '',
    metadata   TEXT,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, created_at);

CREATE TABLE IF NOT EXISTS health_guides (
    seq            INTEGER PRIMARY KEY AUTOINCREMENT,
    id             TEXT NOT NULL UNIQUE,
    session_id     TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    language       TEXT NOT NULL,
    severity_level TEXT NOT NULL,
    content        TEXT NOT NULL,
    created_at     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_health_guides_session ON health_guides(session_id, created_at);

CREATE TABLE IF NOT EXISTS feedback (
    id                      TEXT PRIMARY KEY,
    session_id              TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    rating                  INTEGER NOT NULL CHECK(rating BETWEEN 1 AND 5),
    comments                TEXT NOT NULL DEFAULT '',
    helpful_aspects         TEXT NOT NULL DEFAULT '[]',
    improvement_suggestions TEXT NOT NULL DEFAULT '',
    created_at              TEXT NOT NULL
);
`

// OpenSQLite opens (creating if needed) the database file at path.
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	conn, err := sql.Open("sqlite3", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := conn.ExecContext(ctx, sqliteSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return &SQLStore{db: conn, d: sqliteDialect}, nil
}
