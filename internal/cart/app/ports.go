package app

import (
	"context"

	"github.com/jcmexdev/supermarket-storefront/internal/cart/domain"
)

// Storage persists the item sequence of a single cart.
// LoadItems returns kvstore.ErrNotFound when nothing was saved yet.
type Storage interface {
	LoadItems(ctx context.Context) ([]domain.Item, error)
	SaveItems(ctx context.Context, items []domain.Item) error
}
