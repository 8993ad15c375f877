package app

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jcmexdev/supermarket-storefront/internal/cart/domain"
)

const defaultWriteTimeout = 5 * time.Second

// Persister writes the item sequence to Storage after every operation that
// changes it. Writes run on a single background goroutine: the dispatching
// caller only hands over the latest items and returns. A pending write that
// has not started yet is replaced by a newer one, so storage always ends up
// with the most recent state.
//
// A failed write is logged and counted. The in-memory cart is never rolled
// back and the write is not retried.
type Persister struct {
	storage      Storage
	logger       *slog.Logger
	writeTimeout time.Duration

	mu          sync.Mutex
	closed      bool
	slot        chan []domain.Item
	done        chan struct{}
	unsubscribe func()

	writes   atomic.Int64
	failures atomic.Int64
}

type PersisterOption func(*Persister)

func WithLogger(l *slog.Logger) PersisterOption {
	return func(p *Persister) {
		if l != nil {
			p.logger = l
		}
	}
}

func WithWriteTimeout(d time.Duration) PersisterOption {
	return func(p *Persister) {
		if d > 0 {
			p.writeTimeout = d
		}
	}
}

// Attach subscribes a new Persister to store and starts its writer.
func Attach(store *Store, storage Storage, opts ...PersisterOption) *Persister {
	p := &Persister{
		storage:      storage,
		logger:       slog.Default(),
		writeTimeout: defaultWriteTimeout,
		slot:         make(chan []domain.Item, 1),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}

	go p.run()
	p.unsubscribe = store.Subscribe(p.onChange)
	return p
}

func (p *Persister) onChange(snap Snapshot) {
	if !snap.Op.MutatesItems() {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	// Drop a pending write that has not started; the new one supersedes it.
	select {
	case <-p.slot:
	default:
	}
	p.slot <- snap.Items
}

func (p *Persister) run() {
	defer close(p.done)
	for items := range p.slot {
		p.write(items)
	}
}

func (p *Persister) write(items []domain.Item) {
	ctx, cancel := context.WithTimeout(context.Background(), p.writeTimeout)
	defer cancel()

	ctx, span := otel.Tracer("cart").Start(ctx, "cart.persist")
	defer span.End()
	span.SetAttributes(attribute.Int("cart.items", len(items)))

	if err := p.storage.SaveItems(ctx, items); err != nil {
		p.failures.Add(1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		p.logger.ErrorContext(ctx, "error saving cart", "error", err, "items", len(items))
		return
	}
	p.writes.Add(1)
	p.logger.DebugContext(ctx, "cart saved", "items", len(items))
}

// Writes is the number of successful writes so far.
func (p *Persister) Writes() int64 { return p.writes.Load() }

// Failures is the number of failed writes so far.
func (p *Persister) Failures() int64 { return p.failures.Load() }

// Close stops listening to the store, lets the pending write finish and
// stops the writer. It returns ctx.Err() if ctx ends first.
func (p *Persister) Close(ctx context.Context) error {
	p.unsubscribe()

	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.slot)
	}
	p.mu.Unlock()

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
