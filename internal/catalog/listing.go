package catalog

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/supermarket-storefront/internal/cart/domain"
)

// DefaultPriceScale turns the API's unit price into the storefront price.
const DefaultPriceScale = 1000

// Listing is a product as the storefront shows it: scaled price and picture
// paths resolved against the API root.
type Listing struct {
	ID          int64
	Title       string
	Description string
	Price       decimal.Decimal
	Stock       int
	CategoryID  *int64
	Picture     string
	Pictures    []string
}

// NewListing scales the price by scale, drops the decimals, and resolves every
// picture against imageBase.
func NewListing(p Product, imageBase string, scale decimal.Decimal) Listing {
	pictures := make([]string, 0, len(p.Pictures))
	for _, pic := range p.Pictures {
		pictures = append(pictures, ImageURL(imageBase, pic))
	}
	l := Listing{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price.Mul(scale).Floor(),
		Stock:       p.Stock,
		CategoryID:  p.CategoryRef(),
		Pictures:    pictures,
	}
	if len(pictures) > 0 {
		l.Picture = pictures[0]
	}
	return l
}

func NewListings(products []Product, imageBase string, scale decimal.Decimal) []Listing {
	out := make([]Listing, len(products))
	for i, p := range products {
		out[i] = NewListing(p, imageBase, scale)
	}
	return out
}

// CartProduct is the snapshot handed to the cart when the listing is added.
func (l Listing) CartProduct() domain.Product {
	return domain.Product{
		ID:          domain.ProductID(l.ID),
		Title:       l.Title,
		Picture:     l.Picture,
		Description: l.Description,
		Price:       l.Price,
	}
}

// ImageURL resolves a picture path returned by the API. Absolute URLs are
// kept as they are.
func ImageURL(base, path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http") {
		return path
	}
	return base + path
}

// Filter keeps the listings whose title or description contains term,
// ignoring case. An empty term keeps everything.
func Filter(listings []Listing, term string) []Listing {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return listings
	}
	out := make([]Listing, 0, len(listings))
	for _, l := range listings {
		if strings.Contains(strings.ToLower(l.Title), term) ||
			strings.Contains(strings.ToLower(l.Description), term) {
			out = append(out, l)
		}
	}
	return out
}
