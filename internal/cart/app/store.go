package app

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/supermarket-storefront/internal/cart/domain"
)

// Snapshot is a read-only view of the cart after one operation.
// Items is a private copy; changing it does not affect the store.
type Snapshot struct {
	Items       []domain.Item
	TotalItems  int
	TotalPrice  decimal.Decimal
	AnimateCart bool

	// Version increases by one with every dispatched operation.
	Version uint64
	// Op is the kind of the operation that produced this snapshot.
	// It is empty for snapshots taken before any operation.
	Op domain.Kind
}

// Listener is notified synchronously after every operation. Listeners may
// read the store but must not dispatch into it.
type Listener func(Snapshot)

// Store owns the cart state. Every mutation funnels through dispatch, which
// applies domain.Reduce under a lock, so concurrent callers never observe an
// intermediate state.
type Store struct {
	// notifyMu serializes dispatch+notify so listeners see versions in order.
	notifyMu sync.Mutex

	mu        sync.RWMutex
	state     domain.State
	version   uint64
	lastOp    domain.Kind
	listeners map[uint64]Listener
	nextID    uint64
}

// NewStore builds a store holding items. The animation flag starts lowered.
func NewStore(items []domain.Item) *Store {
	return &Store{
		state:     domain.Reduce(domain.State{}, domain.Load(items)),
		listeners: make(map[uint64]Listener),
	}
}

// AddItem puts one unit of p in the cart.
func (s *Store) AddItem(p domain.Product) Snapshot {
	return s.dispatch(domain.Add(p))
}

// RemoveItem takes one unit of id out of the cart. Unknown ids are ignored.
func (s *Store) RemoveItem(id domain.ProductID) Snapshot {
	return s.dispatch(domain.Remove(id))
}

func (s *Store) ClearCart() Snapshot {
	return s.dispatch(domain.Clear())
}

// ResetAnimation lowers the animation flag once the view has shown it.
func (s *Store) ResetAnimation() Snapshot {
	return s.dispatch(domain.SetAnimation(false))
}

// ItemQuantity returns how many units of id are in the cart.
func (s *Store) ItemQuantity(id domain.ProductID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Quantity(id)
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) dispatch(op domain.Operation) Snapshot {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.state = domain.Reduce(s.state, op)
	s.version++
	s.lastOp = op.Kind
	snap := s.snapshotLocked()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(cloneSnapshot(snap))
	}
	return snap
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Items:       domain.CloneItems(s.state.Items),
		TotalItems:  s.state.TotalItems(),
		TotalPrice:  s.state.TotalPrice(),
		AnimateCart: s.state.AnimateCart,
		Version:     s.version,
		Op:          s.lastOp,
	}
}

func cloneSnapshot(snap Snapshot) Snapshot {
	snap.Items = domain.CloneItems(snap.Items)
	return snap
}
