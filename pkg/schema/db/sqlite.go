package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// ConnectSQLite opens (creating if needed) a SQLite database at path and
// applies the catalog schema.
func ConnectSQLite(ctx context.Context, path string) (*sqlx.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	conn, err := sqlx.ConnectContext(ctx, "sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// modernc.org/sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent request handling.
	conn.SetMaxOpenConns(1)

	if _, err := conn.ExecContext(ctx, SQLiteSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to apply SQLite schema: %w", err)
	}
	return conn, nil
}

// SQLiteSchema is the catalog DDL for SQLite.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS books (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	author      TEXT NOT NULL DEFAULT '',
	publisher   TEXT NOT NULL DEFAULT '',
	subject     TEXT NOT NULL DEFAULT '',
	language    TEXT NOT NULL DEFAULT '',
	popularity  REAL NOT NULL DEFAULT 0,
	view_count  INTEGER NOT NULL DEFAULT 0,
	available   INTEGER NOT NULL DEFAULT 1,
	search_text TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_books_language ON books (language);
CREATE INDEX IF NOT EXISTS idx_books_subject ON books (subject);

CREATE TABLE IF NOT EXISTS borrows (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id     TEXT NOT NULL,
	book_id     TEXT NOT NULL REFERENCES books (id),
	borrowed_at TEXT NOT NULL,
	returned_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_borrows_user ON borrows (user_id);
`
