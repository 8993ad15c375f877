// Package journal keeps an append-only history of cart operations.
//
// Each row is one dispatched operation with the totals it produced and the
// item sequence after it, so the history of a cart can be read back without
// replaying anything. Rows carry the trace and span ids of the write, which
// links a row to its trace in the collector.
package journal

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/supermarket-storefront/internal/cart/domain"
)

// Entry is one row of the journal.
type Entry struct {
	// Version is the store version the operation produced.
	Version     uint64
	Op          domain.Kind
	TotalItems  int
	TotalPrice  decimal.Decimal
	AnimateCart bool
	// Items is the encoded item sequence after the operation.
	Items string

	TraceID    string
	SpanID     string
	RecordedAt time.Time
}

// Repository persists journal entries.
type Repository interface {
	// Append adds a row. Rows are never updated.
	Append(ctx context.Context, entry *Entry) error
	// Recent returns up to limit rows, newest first.
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}

type traceInfo struct {
	TraceID string
	SpanID  string
}

// traceInfoFrom reads the active span from ctx. Both ids are empty when ctx
// carries no valid span.
func traceInfoFrom(ctx context.Context) traceInfo {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return traceInfo{}
	}
	return traceInfo{
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
	}
}
