package kvstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-faster/errors"

	// Pure-Go driver, no CGO needed in the Alpine image.
	_ "modernc.org/sqlite"
)

// schema holds one row per key. Writes replace the row in place.
const schema = `
CREATE TABLE IF NOT EXISTS kv_entries (
    key         TEXT PRIMARY KEY,
    value       TEXT NOT NULL,
    -- RFC3339 text, SQLite has no datetime type.
    updated_at  TEXT NOT NULL
);
`

// SQLite is a Store backed by a single-file SQLite database.
type SQLite struct {
	db        *sql.DB
	namespace string
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens (or creates) the database at path and applies the schema.
//
//	store, err := kvstore.OpenSQLite("./data/cart.db", "storefront")
func OpenSQLite(path, namespace string) (*SQLite, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "kvstore: open sqlite %q", path)
	}

	// Single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "kvstore: apply sqlite schema")
	}

	return &SQLite{db: db, namespace: namespace}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) (string, error) {
	const q = `SELECT value FROM kv_entries WHERE key = ?`

	var value string
	err := s.db.QueryRowContext(ctx, q, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", errors.Wrapf(err, "kvstore: sqlite get %q", key)
	}
	return value, nil
}

func (s *SQLite) Set(ctx context.Context, key, value string) error {
	const q = `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx, q, key, value, now); err != nil {
		return errors.Wrapf(err, "kvstore: sqlite set %q", key)
	}
	return nil
}

func (s *SQLite) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = ?`, key); err != nil {
		return errors.Wrapf(err, "kvstore: sqlite delete %q", key)
	}
	return nil
}

// UpdatedAt reports when key was last written.
func (s *SQLite) UpdatedAt(ctx context.Context, key string) (time.Time, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT updated_at FROM kv_entries WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ErrNotFound
	}
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "kvstore: sqlite updated_at %q", key)
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "kvstore: parse time %q", raw)
	}
	return t, nil
}

func (s *SQLite) GenerateKey(operation, key string) string {
	return generateKey(s.namespace, operation, key)
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
