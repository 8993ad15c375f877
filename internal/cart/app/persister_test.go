package app

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/supermarket-storefront/internal/cart/domain"
	"github.com/jcmexdev/supermarket-storefront/internal/pkg/kvstore"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func closePersister(t *testing.T, p *Persister) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.Close(ctx); err != nil {
		t.Fatalf("persister close: %v", err)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory("test")
	storage := NewKVStorage(kv, "")

	store, persister := Open(ctx, storage, discard)
	store.AddItem(testProduct(1, 100))
	store.AddItem(testProduct(2, 50))
	store.AddItem(testProduct(1, 100))
	before := store.Snapshot()
	closePersister(t, persister)

	reloaded, p2 := Open(ctx, storage, discard)
	defer closePersister(t, p2)

	after := reloaded.Snapshot()
	if len(after.Items) != len(before.Items) {
		t.Fatalf("reloaded %d items, want %d", len(after.Items), len(before.Items))
	}
	for i := range before.Items {
		b, a := before.Items[i], after.Items[i]
		if a.ID != b.ID || a.Quantity != b.Quantity || a.Title != b.Title || !a.Price.Equal(b.Price) {
			t.Fatalf("item %d: got %+v, want %+v", i, a, b)
		}
	}
	if after.AnimateCart {
		t.Fatalf("animation flag must not survive a reload")
	}
	if !after.TotalPrice.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("reloaded total = %s", after.TotalPrice)
	}
}

func TestLoadRecovery(t *testing.T) {
	ctx := context.Background()

	t.Run("missing key yields empty cart", func(t *testing.T) {
		storage := NewKVStorage(kvstore.NewMemory("test"), "")
		if items := Load(ctx, storage, discard); items == nil || len(items) != 0 {
			t.Fatalf("expected empty non-nil items, got %#v", items)
		}
	})

	t.Run("corrupt value yields empty cart", func(t *testing.T) {
		kv := kvstore.NewMemory("test")
		storage := NewKVStorage(kv, "")
		for _, raw := range []string{"not json", `{"id":1}`, `[{"id":"x"}]`, `[{"id":1,"price":"abc"}]`} {
			if err := kv.Set(ctx, storage.Key(), raw); err != nil {
				t.Fatalf("seed: %v", err)
			}
			if items := Load(ctx, storage, discard); len(items) != 0 {
				t.Fatalf("value %q: expected empty cart, got %+v", raw, items)
			}
		}
	})

	t.Run("read error yields empty cart", func(t *testing.T) {
		storage := &failingStorage{err: errors.New("connection refused")}
		if items := Load(ctx, storage, discard); len(items) != 0 {
			t.Fatalf("expected empty cart, got %+v", items)
		}
	})
}

func TestWriteFailureKeepsMemoryState(t *testing.T) {
	storage := &failingStorage{err: errors.New("disk full")}
	store := NewStore(nil)
	persister := Attach(store, storage, WithLogger(discard))

	snap := store.AddItem(testProduct(1, 10))
	closePersister(t, persister)

	if persister.Failures() != 1 || persister.Writes() != 0 {
		t.Fatalf("failures=%d writes=%d", persister.Failures(), persister.Writes())
	}
	if q := store.ItemQuantity(1); q != 1 || len(snap.Items) != 1 {
		t.Fatalf("in-memory state rolled back")
	}
}

func TestAnimationResetIsNotPersisted(t *testing.T) {
	storage := &recordingStorage{}
	store := NewStore(nil)
	persister := Attach(store, storage, WithLogger(discard))

	store.ResetAnimation()
	closePersister(t, persister)

	if n := storage.saves(); n != 0 {
		t.Fatalf("expected no writes, got %d", n)
	}
}

func TestDispatchDoesNotWaitForStorage(t *testing.T) {
	storage := &recordingStorage{release: make(chan struct{})}
	store := NewStore(nil)
	persister := Attach(store, storage, WithLogger(discard))

	done := make(chan struct{})
	go func() {
		store.AddItem(testProduct(1, 1))
		store.AddItem(testProduct(2, 1))
		store.AddItem(testProduct(3, 1))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("dispatch blocked on a pending write")
	}

	close(storage.release)
	closePersister(t, persister)

	last := storage.last()
	if len(last) != 3 {
		t.Fatalf("last saved state has %d items, want 3", len(last))
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	store := NewStore(nil)
	persister := Attach(store, &recordingStorage{}, WithLogger(discard))
	closePersister(t, persister)
	closePersister(t, persister)

	// Operations after close are not persisted and do not panic.
	store.AddItem(testProduct(1, 1))
}

type failingStorage struct {
	err error
}

func (f *failingStorage) LoadItems(context.Context) ([]domain.Item, error) { return nil, f.err }
func (f *failingStorage) SaveItems(context.Context, []domain.Item) error    { return f.err }

type recordingStorage struct {
	release chan struct{}

	mu     sync.Mutex
	writes [][]domain.Item
}

func (r *recordingStorage) LoadItems(context.Context) ([]domain.Item, error) {
	return nil, kvstore.ErrNotFound
}

func (r *recordingStorage) SaveItems(ctx context.Context, items []domain.Item) error {
	if r.release != nil {
		select {
		case <-r.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.mu.Lock()
	r.writes = append(r.writes, items)
	r.mu.Unlock()
	return nil
}

func (r *recordingStorage) saves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.writes)
}

func (r *recordingStorage) last() []domain.Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.writes) == 0 {
		return nil
	}
	return r.writes[len(r.writes)-1]
}
