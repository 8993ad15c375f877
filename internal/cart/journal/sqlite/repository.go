// Package sqlite stores the cart journal in SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/supermarket-storefront/internal/cart/domain"
	"github.com/jcmexdev/supermarket-storefront/internal/cart/journal"

	_ "modernc.org/sqlite"
)

// schema is append-only: one row per dispatched operation.
const schema = `
CREATE TABLE IF NOT EXISTS cart_journal (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    version       INTEGER NOT NULL,
    op            TEXT    NOT NULL,
    total_items   INTEGER NOT NULL,
    -- decimal text, exact
    total_price   TEXT    NOT NULL,
    animate_cart  INTEGER NOT NULL DEFAULT 0,
    items         TEXT    NOT NULL DEFAULT '[]',
    trace_id      TEXT    NOT NULL DEFAULT '',
    span_id       TEXT    NOT NULL DEFAULT '',
    recorded_at   TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cart_journal_recorded_at ON cart_journal(recorded_at);
CREATE INDEX IF NOT EXISTS idx_cart_journal_trace_id ON cart_journal(trace_id);
`

const timeLayout = "2006-01-02T15:04:05.999999999Z"

type Repository struct {
	db *sql.DB
}

var _ journal.Repository = (*Repository)(nil)

// Open opens (or creates) the journal database at path.
//
//	repo, err := sqlite.Open("./data/journal.db")
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "journal: open sqlite %q", path)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "journal: apply schema")
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) Append(ctx context.Context, e *journal.Entry) error {
	const q = `
		INSERT INTO cart_journal
			(version, op, total_items, total_price, animate_cart, items, trace_id, span_id, recorded_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		int64(e.Version),
		string(e.Op),
		e.TotalItems,
		e.TotalPrice.String(),
		e.AnimateCart,
		e.Items,
		e.TraceID,
		e.SpanID,
		e.RecordedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return errors.Wrapf(err, "journal: append version %d", e.Version)
	}
	return nil
}

func (r *Repository) Recent(ctx context.Context, limit int) ([]journal.Entry, error) {
	const q = `
		SELECT version, op, total_items, total_price, animate_cart, items,
		       trace_id, span_id, recorded_at
		FROM   cart_journal
		ORDER  BY id DESC
		LIMIT  ?`

	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, errors.Wrap(err, "journal: query recent")
	}
	defer rows.Close()

	out := make([]journal.Entry, 0, limit)
	for rows.Next() {
		var (
			e          journal.Entry
			version    int64
			op         string
			price      string
			recordedAt string
		)
		if err := rows.Scan(&version, &op, &e.TotalItems, &price, &e.AnimateCart, &e.Items,
			&e.TraceID, &e.SpanID, &recordedAt); err != nil {
			return nil, errors.Wrap(err, "journal: scan row")
		}
		e.Version = uint64(version)
		e.Op = domain.Kind(op)
		if e.TotalPrice, err = decimal.NewFromString(price); err != nil {
			return nil, errors.Wrapf(err, "journal: parse total price %q", price)
		}
		if e.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt); err != nil {
			return nil, errors.Wrapf(err, "journal: parse time %q", recordedAt)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "journal: iterate rows")
	}
	return out, nil
}
