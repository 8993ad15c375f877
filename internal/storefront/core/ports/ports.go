package ports

import (
	"context"

	"github.com/jcmexdev/supermarket-storefront/internal/cart/app"
	"github.com/jcmexdev/supermarket-storefront/internal/cart/domain"
	"github.com/jcmexdev/supermarket-storefront/internal/cart/journal"
	"github.com/jcmexdev/supermarket-storefront/internal/catalog"
)

// Cart is what the storefront needs from the cart store.
type Cart interface {
	AddItem(p domain.Product) app.Snapshot
	RemoveItem(id domain.ProductID) app.Snapshot
	ClearCart() app.Snapshot
	ResetAnimation() app.Snapshot
	ItemQuantity(id domain.ProductID) int
	Snapshot() app.Snapshot
}

// Catalog is the remote product API.
type Catalog interface {
	BaseURL() string
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	GetProduct(ctx context.Context, id int64) (catalog.Product, error)
	ListCategories(ctx context.Context) ([]catalog.Category, error)
	CreateProduct(ctx context.Context, in catalog.ProductInput) (catalog.Product, error)
	UpdateProduct(ctx context.Context, id int64, in catalog.ProductInput) (catalog.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	UploadPicture(ctx context.Context, id int64, filename, contentType string, data []byte) (string, error)
	DeletePicture(ctx context.Context, id int64, filePath string) error
}

// History reads the cart operation journal.
type History interface {
	Recent(ctx context.Context, limit int) ([]journal.Entry, error)
}

var (
	_ Cart    = (*app.Store)(nil)
	_ Catalog = (*catalog.Client)(nil)
	_ History = (journal.Repository)(nil)
)
