package app

import (
	"context"
	"log/slog"

	"github.com/go-faster/errors"

	"github.com/jcmexdev/supermarket-storefront/internal/cart/domain"
	"github.com/jcmexdev/supermarket-storefront/internal/pkg/kvstore"
)

// DefaultStorageKey is the fixed key the cart lives under.
const DefaultStorageKey = "untdf_cart"

// KVStorage keeps the cart as one encoded value under a fixed key.
type KVStorage struct {
	kv  kvstore.Store
	key string
}

var _ Storage = (*KVStorage)(nil)

// NewKVStorage namespaces key through kv.GenerateKey. An empty key falls back
// to DefaultStorageKey.
func NewKVStorage(kv kvstore.Store, key string) *KVStorage {
	if key == "" {
		key = DefaultStorageKey
	}
	return &KVStorage{kv: kv, key: kv.GenerateKey("cart", key)}
}

// Key is the fully qualified key written to the backend.
func (s *KVStorage) Key() string { return s.key }

func (s *KVStorage) LoadItems(ctx context.Context) ([]domain.Item, error) {
	raw, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	return DecodeItems(raw)
}

func (s *KVStorage) SaveItems(ctx context.Context, items []domain.Item) error {
	raw, err := EncodeItems(items)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, s.key, raw)
}

// Load restores the persisted items. It never fails: a missing value yields
// an empty cart, and so does a read or decode error, which is logged.
func Load(ctx context.Context, storage Storage, logger *slog.Logger) []domain.Item {
	if logger == nil {
		logger = slog.Default()
	}

	items, err := storage.LoadItems(ctx)
	if errors.Is(err, kvstore.ErrNotFound) {
		logger.DebugContext(ctx, "no saved cart, starting empty")
		return []domain.Item{}
	}
	if err != nil {
		logger.WarnContext(ctx, "error loading cart, starting empty", "error", err)
		return []domain.Item{}
	}
	return items
}
