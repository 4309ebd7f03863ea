// Package store keeps local dashboard state in SQLite: per-view
// preferences, small settings and the export history.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS view_prefs (
    view           TEXT PRIMARY KEY,
    sort_field     TEXT NOT NULL DEFAULT '',
    sort_asc       INTEGER NOT NULL DEFAULT 1 CHECK(sort_asc IN (0,1)),
    auto_refresh   INTEGER NOT NULL DEFAULT 0 CHECK(auto_refresh IN (0,1)),
    hidden_columns TEXT NOT NULL DEFAULT '',
    active_column  TEXT NOT NULL DEFAULT '',
    updated_at     TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS exports (
    id         INTEGER PRIMARY KEY,
    view       TEXT NOT NULL,
    format     TEXT NOT NULL CHECK(format IN ('csv','xlsx')),
    path       TEXT NOT NULL,
    row_count  INTEGER NOT NULL,
    created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
);

CREATE INDEX IF NOT EXISTS idx_exports_created_at ON exports(created_at DESC);
`

// Open opens or creates the SQLite database and initializes the schema.
func Open(dbPath string) (*sql.DB, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}
