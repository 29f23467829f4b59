// Package sqlite is a single-file ledger store built on mattn/go-sqlite3.
//
// Amounts are stored as TEXT and creation times as Unix nanoseconds. The
// database is opened with a single connection: SQLite serializes writers
// anyway, and one connection keeps an in-memory database alive for the
// lifetime of the *sql.DB.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
    number   TEXT PRIMARY KEY,
    currency TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS operations (
    id      INTEGER PRIMARY KEY AUTOINCREMENT,
    account TEXT      NOT NULL,
    debit   TEXT,
    credit  TEXT,
    created INTEGER NOT NULL,
    CHECK ((debit IS NULL) <> (credit IS NULL))
);

CREATE INDEX IF NOT EXISTS idx_operations_account ON operations (account, id);

CREATE TABLE IF NOT EXISTS transfers (
    id      INTEGER PRIMARY KEY AUTOINCREMENT,
    created INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS transfer_operations (
    transfer_id  INTEGER NOT NULL REFERENCES transfers (id) ON DELETE CASCADE,
    operation_id INTEGER NOT NULL UNIQUE REFERENCES operations (id) ON DELETE CASCADE,
    position     INTEGER NOT NULL,
    PRIMARY KEY (transfer_id, position)
);
`

// Open opens (creating if needed) the database file at path and applies the
// schema.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	return open(ctx, "file:"+path)
}

// OpenMemory opens a private in-memory database. name must be unique per
// database.
func OpenMemory(ctx context.Context, name string) (*sql.DB, error) {
	return open(ctx, "file:"+url.PathEscape(name)+"?mode=memory")
}

func open(ctx context.Context, dsn string) (*sql.DB, error) {
	sep := "?"
	if u, err := url.Parse(dsn); err == nil && u.RawQuery != "" {
		sep = "&"
	}
	dsn += sep + "_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply sqlite schema: %w", err)
	}

	return db, nil
}

// PutAccount registers an account in the directory table, replacing its
// currency if it already exists. The ledger itself never calls it.
func PutAccount(ctx context.Context, db *sql.DB, number, currency string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO accounts (number, currency) VALUES (?, ?)
		 ON CONFLICT (number) DO UPDATE SET currency = excluded.currency`,
		number, currency)
	return err
}
