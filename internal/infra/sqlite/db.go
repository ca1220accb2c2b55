// Package sqlite implements the persistence gateway on a local SQLite
// database. Every field is optional on load: absent rows and NULL columns
// substitute safe defaults, which is how schema evolution is tolerated.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite connection for engine state persistence.
type DB struct {
	db *sql.DB
}

// Open opens or creates a SQLite database at the given path and applies
// migrations. Use ":memory:" for an ephemeral database.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// A single writer keeps SQLite happy and matches the engine's
	// single-serialization-point design.
	conn.SetMaxOpenConns(1)

	db := &DB{db: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.db.Close()
}

// Migrations returns the schema migration statements.
// Each string is a single SQL statement (SQLite executes one at a time).
func Migrations() []string {
	return []string{
		// Ledger counters and the dirty-exit marker. Single row (id = 1).
		`CREATE TABLE IF NOT EXISTS wallet (
			id                      INTEGER PRIMARY KEY CHECK (id = 1),
			balance                 INTEGER NOT NULL DEFAULT 0,
			lifetime_earned         INTEGER NOT NULL DEFAULT 0,
			profile_lifetime_earned INTEGER NOT NULL DEFAULT 0,
			accrual_rate            INTEGER NOT NULL DEFAULT 0,
			dirty_exit              INTEGER NOT NULL DEFAULT 0,
			saved_at                TEXT
		)`,

		// Owned upgrade counts, one row per upgrade id.
		`CREATE TABLE IF NOT EXISTS owned_upgrades (
			upgrade_id TEXT PRIMARY KEY,
			owned      INTEGER NOT NULL DEFAULT 0
		)`,

		// Inventory flags for catalog entries.
		`CREATE TABLE IF NOT EXISTS inventory (
			item_id TEXT PRIMARY KEY,
			owned   INTEGER NOT NULL DEFAULT 0
		)`,

		// Dynamically-registered catalog additions.
		`CREATE TABLE IF NOT EXISTS catalog_entries (
			id        TEXT PRIMARY KEY,
			seed      TEXT NOT NULL DEFAULT '',
			cost      INTEGER NOT NULL DEFAULT 0,
			tags_json TEXT NOT NULL DEFAULT '[]',
			image_ref TEXT NOT NULL DEFAULT '',
			position  INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_catalog_position ON catalog_entries(position)`,

		// Suspend snapshot captured at background entry. Single row (id = 1),
		// present only while a background gap is unconsumed.
		`CREATE TABLE IF NOT EXISTS suspend_snapshot (
			id                      INTEGER PRIMARY KEY CHECK (id = 1),
			captured_at             TEXT,
			balance                 INTEGER NOT NULL DEFAULT 0,
			lifetime_earned         INTEGER NOT NULL DEFAULT 0,
			profile_lifetime_earned INTEGER NOT NULL DEFAULT 0,
			accrual_rate            INTEGER NOT NULL DEFAULT 0
		)`,
	}
}

func (db *DB) migrate() error {
	for _, stmt := range Migrations() {
		if _, err := db.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}
