// Package db provides database connection helpers and the schema DDL shared
// by the API and the scripts. Connections are constructed explicitly and
// owned by the caller.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// ConnectPostgres opens and verifies a PostgreSQL connection pool.
func ConnectPostgres(ctx context.Context, uri string) (*sqlx.DB, error) {
	if uri == "" {
		return nil, fmt.Errorf("POSTGRES_URI is required")
	}

	conn, err := sqlx.ConnectContext(ctx, "postgres", uri)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(25)
	conn.SetConnMaxLifetime(5 * time.Minute)
	conn.SetConnMaxIdleTime(1 * time.Minute)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}
	return conn, nil
}

// PostgresSchema is the catalog DDL for PostgreSQL.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS books (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	author      TEXT NOT NULL DEFAULT '',
	publisher   TEXT NOT NULL DEFAULT '',
	subject     TEXT NOT NULL DEFAULT '',
	language    TEXT NOT NULL DEFAULT '',
	popularity  DOUBLE PRECISION NOT NULL DEFAULT 0,
	view_count  BIGINT NOT NULL DEFAULT 0,
	available   BOOLEAN NOT NULL DEFAULT TRUE,
	search_text TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_books_language ON books (language);
CREATE INDEX IF NOT EXISTS idx_books_subject ON books (subject);
CREATE INDEX IF NOT EXISTS idx_books_search_text ON books USING GIN (to_tsvector('simple', search_text));

CREATE TABLE IF NOT EXISTS borrows (
	id          BIGSERIAL PRIMARY KEY,
	user_id     TEXT NOT NULL,
	book_id     TEXT NOT NULL REFERENCES books (id),
	borrowed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	returned_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_borrows_user ON borrows (user_id);
`
