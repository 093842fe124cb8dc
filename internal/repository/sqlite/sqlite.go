// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which means you need a C compiler installed and
// cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code — no C compiler needed, works everywhere
// Go works.
//
// The pattern throughout this package is Go's standard database/sql:
//  1. sql.Open(driverName, dataSourceName) → creates a connection pool
//  2. db.QueryRowContext / db.ExecContext  → runs parameterized queries
//  3. row.Scan(&field1, &field2)           → reads results into Go variables
package sqlite

import (
	"database/sql"
	"fmt"

	// Side-effect import: the driver registers itself with database/sql
	// under the name "sqlite" in its init().
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides repository methods.
//
// Wrapping the pool in a struct lets us attach the repository methods
// (user.go, event.go), satisfy the repository interfaces, and own the
// lifecycle: New creates it, Close destroys it.
type DB struct {
	conn *sql.DB
}

// New creates a new SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/calendar.db"  → file-based database (persistent)
//   - ":memory:"          → in-memory database (used by tests, lost on close)
func New(dbPath string) (*DB, error) {
	// The pragmas ride in the DSN so the driver applies them to EVERY
	// connection the pool opens — a plain Exec("PRAGMA ...") only reaches
	// whichever connection the pool hands out for that one call, leaving
	// the rest without WAL or foreign-key enforcement.
	//
	// journal_mode(WAL)  — concurrent reads while a write is happening;
	//                      default SQLite locks the whole database during
	//                      writes, which would serialize a web server.
	// foreign_keys(1)    — OFF by default (backwards compatibility);
	//                      events.user_id references users(id), so we want
	//                      the integrity check.
	dsn := "file:" + dbPath + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if dbPath == ":memory:" {
		// Every pool connection to :memory: opens its own empty database;
		// cap the pool at one so the tests all see the same schema.
		conn.SetMaxOpenConns(1)
	}

	// sql.Open doesn't actually connect; Ping forces an immediate
	// connection so a bad path surfaces here, not on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool. Callers should defer this
// immediately after New succeeds.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS is idempotent, so
// running this on every startup is safe.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			first_name    TEXT NOT NULL DEFAULT '',
			last_name     TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL REFERENCES users(id),
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			icon        TEXT NOT NULL DEFAULT '',
			start_at    DATETIME,
			end_at      DATETIME,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_events_user_id ON events(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating events table: %w", err)
	}

	return nil
}
