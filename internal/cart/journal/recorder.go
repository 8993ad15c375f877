package journal

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/supermarket-storefront/internal/cart/app"
)

// DefaultBuffer is how many operations may wait for the journal writer
// before new ones are dropped.
const DefaultBuffer = 256

// Recorder appends every store operation to a Repository. Appends happen on
// one background goroutine in dispatch order. When the buffer is full the
// operation is dropped and counted; dispatch never waits for the journal.
type Recorder struct {
	repo   Repository
	logger *slog.Logger

	mu          sync.Mutex
	closed      bool
	queue       chan app.Snapshot
	done        chan struct{}
	unsubscribe func()

	appended atomic.Int64
	dropped  atomic.Int64
	failed   atomic.Int64
}

// Record subscribes a Recorder to store. buffer below 1 means DefaultBuffer.
func Record(store *app.Store, repo Repository, logger *slog.Logger, buffer int) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	if buffer < 1 {
		buffer = DefaultBuffer
	}
	r := &Recorder{
		repo:   repo,
		logger: logger,
		queue:  make(chan app.Snapshot, buffer),
		done:   make(chan struct{}),
	}
	go r.run()
	r.unsubscribe = store.Subscribe(r.onChange)
	return r
}

func (r *Recorder) onChange(snap app.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	select {
	case r.queue <- snap:
	default:
		r.dropped.Add(1)
		r.logger.Warn("cart journal full, operation dropped", "version", snap.Version, "op", snap.Op)
	}
}

func (r *Recorder) run() {
	defer close(r.done)
	for snap := range r.queue {
		r.append(snap)
	}
}

func (r *Recorder) append(snap app.Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ctx, span := otel.Tracer("cart").Start(ctx, "cart.journal")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("cart.version", int64(snap.Version)),
		attribute.String("cart.op", string(snap.Op)),
	)

	items, err := app.EncodeItems(snap.Items)
	if err != nil {
		r.fail(ctx, span, snap, err)
		return
	}

	ti := traceInfoFrom(ctx)
	entry := &Entry{
		Version:     snap.Version,
		Op:          snap.Op,
		TotalItems:  snap.TotalItems,
		TotalPrice:  snap.TotalPrice,
		AnimateCart: snap.AnimateCart,
		Items:       items,
		TraceID:     ti.TraceID,
		SpanID:      ti.SpanID,
		RecordedAt:  time.Now().UTC(),
	}
	if err := r.repo.Append(ctx, entry); err != nil {
		r.fail(ctx, span, snap, err)
		return
	}
	r.appended.Add(1)
}

func (r *Recorder) fail(ctx context.Context, span trace.Span, snap app.Snapshot, err error) {
	r.failed.Add(1)
	span.RecordError(err)
	span.SetStatus(codes.Error, "journal append failed")
	r.logger.ErrorContext(ctx, "error appending to cart journal", "error", err, "version", snap.Version)
}

// Appended, Dropped and Failed count operations by outcome.
func (r *Recorder) Appended() int64 { return r.appended.Load() }
func (r *Recorder) Dropped() int64  { return r.dropped.Load() }
func (r *Recorder) Failed() int64   { return r.failed.Load() }

// Close stops recording and waits for queued operations to be appended.
func (r *Recorder) Close(ctx context.Context) error {
	r.unsubscribe()

	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
