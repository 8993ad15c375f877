// Package bootstrap builds the cart and its storage from configuration.
// The storefront server and cartctl share it.
package bootstrap

import (
	"context"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"

	"github.com/jcmexdev/supermarket-storefront/internal/cart/app"
	"github.com/jcmexdev/supermarket-storefront/internal/cart/journal"
	journalsqlite "github.com/jcmexdev/supermarket-storefront/internal/cart/journal/sqlite"
	"github.com/jcmexdev/supermarket-storefront/internal/catalog"
	"github.com/jcmexdev/supermarket-storefront/internal/pkg/config"
	"github.com/jcmexdev/supermarket-storefront/internal/pkg/kvstore"
)

// OpenKV opens the backend named by CART_STORAGE.
func OpenKV(cfg config.Config) (kvstore.Store, error) {
	ns := cfg.Cart.Namespace
	switch cfg.Cart.Storage {
	case config.StorageRedis:
		return kvstore.NewRedis(kvstore.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			URL:      cfg.Redis.URL,
		}, ns)
	case config.StorageSQLite:
		if dir := filepath.Dir(cfg.Cart.SQLitePath); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, errors.Wrapf(err, "bootstrap: create dir %q", dir)
			}
		}
		return kvstore.OpenSQLite(cfg.Cart.SQLitePath, ns)
	case config.StorageFile:
		return kvstore.OpenFile(cfg.Cart.FileDir, ns)
	case config.StorageMemory:
		return kvstore.NewMemory(ns), nil
	default:
		return nil, errors.Errorf("bootstrap: unknown storage %q", cfg.Cart.Storage)
	}
}

// Cart bundles the store with what keeps it persisted.
type Cart struct {
	Store     *app.Store
	Persister *app.Persister
	Storage   *app.KVStorage

	// Journal and Recorder are nil unless CART_JOURNAL_PATH is set.
	Journal  journal.Repository
	Recorder *journal.Recorder

	kv kvstore.Store
}

// OpenCart opens the configured backend and restores the cart from it.
func OpenCart(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Cart, error) {
	kv, err := OpenKV(cfg)
	if err != nil {
		return nil, err
	}

	storage := app.NewKVStorage(kv, cfg.Cart.Key)
	store, persister := app.Open(ctx, storage, logger, app.WithWriteTimeout(cfg.Cart.WriteTimeout))

	cart := &Cart{Store: store, Persister: persister, Storage: storage, kv: kv}

	if path := cfg.Cart.JournalPath; path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			_ = cart.Close(ctx)
			return nil, errors.Wrapf(err, "bootstrap: create dir for %q", path)
		}
		repo, err := journalsqlite.Open(path)
		if err != nil {
			_ = cart.Close(ctx)
			return nil, err
		}
		cart.Journal = repo
		cart.Recorder = journal.Record(store, repo, logger, journal.DefaultBuffer)
	}

	logger.InfoContext(ctx, "cart storage ready",
		"backend", cfg.Cart.Storage,
		"key", storage.Key(),
		"journal", cfg.Cart.JournalPath != "",
	)
	return cart, nil
}

// Close flushes the pending write and queued journal rows, then closes the
// backends.
func (c *Cart) Close(ctx context.Context) error {
	var errs []error
	if c.Recorder != nil {
		if err := c.Recorder.Close(ctx); err != nil {
			errs = append(errs, errors.Wrap(err, "bootstrap: flush journal"))
		}
	}
	if c.Journal != nil {
		if err := c.Journal.Close(); err != nil {
			errs = append(errs, errors.Wrap(err, "bootstrap: close journal"))
		}
	}
	if err := c.Persister.Close(ctx); err != nil {
		errs = append(errs, errors.Wrap(err, "bootstrap: flush cart"))
	}
	if err := c.kv.Close(); err != nil {
		errs = append(errs, errors.Wrap(err, "bootstrap: close storage"))
	}
	return stderrors.Join(errs...)
}

// NewCatalog builds the catalog client from configuration.
func NewCatalog(cfg config.Config, logger *slog.Logger) *catalog.Client {
	return catalog.NewClient(cfg.Catalog.URL, cfg.Catalog.Token, cfg.Catalog.Timeout, catalog.WithLogger(logger))
}
