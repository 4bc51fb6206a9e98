package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rnwolfe/exmachina/internal/config"
	"github.com/zoobzio/clockz"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite connection holding the options table and transients.
type DB struct {
	conn  *sql.DB
	clock clockz.Clock
}

// Option configures a DB during Open.
type Option func(*DB)

// WithClock sets the clock used for transient expiry.
// Default is clockz.RealClock. Use a fake clock for deterministic tests.
func WithClock(clock clockz.Clock) Option {
	return func(db *DB) {
		db.clock = clock
	}
}

// Open opens (or creates) the exmachina database in the XDG data dir.
func Open(opts ...Option) (*DB, error) {
	paths := config.GetPaths()
	if err := paths.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("creating data dirs: %w", err)
	}
	return OpenPath(paths.DBFile, opts...)
}

// OpenPath opens (or creates) a database at an explicit path.
func OpenPath(path string, opts ...Option) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database dir: %w", err)
	}

	conn, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=MEMORY",
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			conn.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	db := &DB{conn: conn, clock: clockz.RealClock}
	for _, opt := range opts {
		opt(db)
	}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the raw sql.DB for direct queries.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// migrate runs all schema migrations.
func (db *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		// One row per option; the theme settings blob lives in a single row.
		`CREATE TABLE IF NOT EXISTS options (
			option_name TEXT PRIMARY KEY,
			option_value TEXT NOT NULL DEFAULT '',
			autoload INTEGER NOT NULL DEFAULT 1,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		// Expiring cache entries. expires_at is unix seconds, 0 = never.
		`CREATE TABLE IF NOT EXISTS transients (
			name TEXT PRIMARY KEY,
			value TEXT NOT NULL DEFAULT '',
			expires_at INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transients_expires ON transients(expires_at)`,
	}

	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// Option returns the stored value of an option. The bool is false when the
// option has never been written.
func (db *DB) Option(name string) (string, bool, error) {
	var value string
	err := db.conn.QueryRow(
		`SELECT option_value FROM options WHERE option_name = ?`, name,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading option %q: %w", name, err)
	}
	return value, true, nil
}

// UpdateOption inserts or replaces an option value.
func (db *DB) UpdateOption(name, value string) error {
	_, err := db.conn.Exec(
		`INSERT INTO options (option_name, option_value, updated_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(option_name) DO UPDATE SET
		   option_value = excluded.option_value,
		   updated_at = CURRENT_TIMESTAMP`,
		name, value,
	)
	if err != nil {
		return fmt.Errorf("writing option %q: %w", name, err)
	}
	return nil
}

// DeleteOption removes an option. Deleting a missing option is not an error.
func (db *DB) DeleteOption(name string) error {
	if _, err := db.conn.Exec(`DELETE FROM options WHERE option_name = ?`, name); err != nil {
		return fmt.Errorf("deleting option %q: %w", name, err)
	}
	return nil
}

// Options returns all option names in sorted order.
func (db *DB) Options() ([]string, error) {
	rows, err := db.conn.Query(`SELECT option_name FROM options ORDER BY option_name`)
	if err != nil {
		return nil, fmt.Errorf("listing options: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// SetTransient stores a value that expires after ttl. A zero ttl never expires.
func (db *DB) SetTransient(name, value string, ttl time.Duration) error {
	var expires int64
	if ttl > 0 {
		expires = db.clock.Now().Add(ttl).Unix()
	}
	_, err := db.conn.Exec(
		`INSERT INTO transients (name, value, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		name, value, expires,
	)
	if err != nil {
		return fmt.Errorf("writing transient %q: %w", name, err)
	}
	return nil
}

// Transient returns a transient's value. Expired entries read as missing and
// are deleted on the way out.
func (db *DB) Transient(name string) (string, bool, error) {
	var (
		value   string
		expires int64
	)
	err := db.conn.QueryRow(
		`SELECT value, expires_at FROM transients WHERE name = ?`, name,
	).Scan(&value, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading transient %q: %w", name, err)
	}

	if expires != 0 && db.clock.Now().Unix() >= expires {
		if err := db.DeleteTransient(name); err != nil {
			return "", false, err
		}
		return "", false, nil
	}
	return value, true, nil
}

// DeleteTransient removes a transient.
func (db *DB) DeleteTransient(name string) error {
	if _, err := db.conn.Exec(`DELETE FROM transients WHERE name = ?`, name); err != nil {
		return fmt.Errorf("deleting transient %q: %w", name, err)
	}
	return nil
}

// PurgeExpired deletes every expired transient and returns how many were removed.
func (db *DB) PurgeExpired() (int64, error) {
	res, err := db.conn.Exec(
		`DELETE FROM transients WHERE expires_at != 0 AND expires_at <= ?`,
		db.clock.Now().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("purging transients: %w", err)
	}
	return res.RowsAffected()
}
