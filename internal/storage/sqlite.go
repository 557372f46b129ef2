package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/gradtrack/gradtrack/internal/types"
)

// DefaultKey is the key the tracker document is stored under.
const DefaultKey = "gradtrack.applications"

// SQLite stores the document as one row of a key/value table in an embedded
// SQLite database, the same shape a browser keeps in localStorage.
//
// The database runs in WAL mode with a busy timeout so a second process
// (e.g. `gt list` while `gt serve` runs) can read while the store writes.
type SQLite struct {
	conn *sql.DB
	path string
	key  string
}

// OpenSQLite opens or creates the database at path and ensures the schema.
// The caller MUST call Close.
func OpenSQLite(ctx context.Context, path, key string) (*SQLite, error) {
	if key == "" {
		key = DefaultKey
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// A single connection keeps ":memory:" databases alive across calls.
	conn.SetMaxOpenConns(1)

	db := &SQLite{conn: conn, path: path, key: key}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if err := db.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (db *SQLite) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		body TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	if _, err := db.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Path returns the database location.
func (db *SQLite) Path() string {
	return db.path
}

// Read returns the stored document, or ErrNotExist when the key is unset.
func (db *SQLite) Read(ctx context.Context) ([]byte, error) {
	var body string
	err := db.conn.QueryRowContext(ctx, `SELECT body FROM kv WHERE key = ?`, db.key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", db.key, err)
	}
	return []byte(body), nil
}

// Write replaces the stored document.
func (db *SQLite) Write(ctx context.Context, schema *types.DataSchema) error {
	data, err := Marshal(schema)
	if err != nil {
		return err
	}
	return db.put(ctx, db.key, string(data))
}

// Backup copies the current row to <key>.<reason>.<timestamp>.
func (db *SQLite) Backup(ctx context.Context, reason string) (string, error) {
	data, err := db.Read(ctx)
	if errors.Is(err, ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s.%s.%s", db.key, reason, time.Now().Format(backupStamp))
	if err := db.put(ctx, name, string(data)); err != nil {
		return "", fmt.Errorf("failed to create backup: %w", err)
	}
	return name, nil
}

// Keys lists every stored key, backups included.
func (db *SQLite) Keys(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT key FROM kv ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Close checkpoints the WAL and closes the connection.
func (db *SQLite) Close() error {
	if db.conn == nil {
		return nil
	}
	if _, err := db.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to checkpoint WAL: %v\n", err)
	}
	if err := db.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	db.conn = nil
	return nil
}

func (db *SQLite) put(ctx context.Context, key, body string) error {
	query := `
	INSERT INTO kv (key, body, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		body = excluded.body,
		updated_at = excluded.updated_at
	`
	if _, err := db.conn.ExecContext(ctx, query, key, body, types.Now(time.Now())); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
