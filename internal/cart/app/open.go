package app

import (
	"context"
	"log/slog"
)

// Open restores the cart from storage and attaches a Persister to it.
// The caller owns both and must Close the persister on shutdown.
func Open(ctx context.Context, storage Storage, logger *slog.Logger, opts ...PersisterOption) (*Store, *Persister) {
	if logger == nil {
		logger = slog.Default()
	}

	items := Load(ctx, storage, logger)
	store := NewStore(items)

	opts = append([]PersisterOption{WithLogger(logger)}, opts...)
	persister := Attach(store, storage, opts...)

	logger.InfoContext(ctx, "cart restored", "items", len(items))
	return store, persister
}
