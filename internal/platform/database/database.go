package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // postgres driver
)

// DBTX is the subset of database/sql shared by *sql.DB and *sql.Tx. Stores
// hold a DBTX so the same implementation serves both pooled and transactional
// use.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Connect opens a pooled connection handle and verifies it with a ping.
func Connect(dsn string, timeout time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database handle: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database within %v: %w", timeout, err)
	}

	return db, nil
}

// Schema is the canonical DDL for the collection-ranking tables. Uniqueness of
// (owner, title) and (owner, name) lives in the database so check-then-act
// races are closed at commit time, not in application code.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id                   UUID PRIMARY KEY,
	email                TEXT NOT NULL UNIQUE,
	display_name         TEXT NOT NULL,
	password_hash        TEXT NOT NULL,
	ranking_ids          UUID[] NOT NULL DEFAULT '{}',
	box_ids              UUID[] NOT NULL DEFAULT '{}',
	highest_ranked_count INTEGER NOT NULL DEFAULT 0 CHECK (highest_ranked_count >= 0),
	created_at           TIMESTAMPTZ NOT NULL,
	updated_at           TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS pokemon (
	id         UUID PRIMARY KEY,
	dex_number INTEGER NOT NULL UNIQUE,
	name       TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS rankings (
	id         UUID PRIMARY KEY,
	owner_id   UUID NOT NULL REFERENCES users(id),
	title      TEXT NOT NULL,
	pokemon    UUID[] NOT NULL DEFAULT '{}',
	zones      JSONB NOT NULL DEFAULT '[]',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	UNIQUE (owner_id, title)
);

CREATE TABLE IF NOT EXISTS boxes (
	id             UUID PRIMARY KEY,
	owner_id       UUID NOT NULL REFERENCES users(id),
	name           TEXT NOT NULL,
	is_public      BOOLEAN NOT NULL DEFAULT FALSE,
	pokemon        UUID[] NOT NULL DEFAULT '{}',
	favorite_count INTEGER NOT NULL DEFAULT 0 CHECK (favorite_count >= 0),
	created_at     TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL,
	UNIQUE (owner_id, name)
);
`

// EnsureSchema applies the canonical DDL. Idempotent; used by main on boot
// and by the integration test harness.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
