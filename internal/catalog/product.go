package catalog

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Category groups products in the remote catalog.
type Category struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Product is a catalog product as the remote API returns it.
type Product struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CategoryID  *int64          `json:"category_id,omitempty"`
	Category    *Category       `json:"category,omitempty"`
	Pictures    []string        `json:"pictures"`
	Extra       map[string]any  `json:"extra,omitempty"`
}

// CategoryRef returns the category id whether the API sent it flat or nested.
func (p Product) CategoryRef() *int64 {
	if p.CategoryID != nil {
		return p.CategoryID
	}
	if p.Category != nil {
		id := p.Category.ID
		return &id
	}
	return nil
}

// ProductInput is the admin payload for creating or updating a product.
type ProductInput struct {
	Title       string
	Description string
	Price       decimal.Decimal
	Stock       int
	CategoryID  *int64
	Pictures    []string
	Extra       map[string]any
}

// Input converts an existing product into an update payload.
func (p Product) Input() ProductInput {
	return ProductInput{
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		CategoryID:  p.CategoryRef(),
		Pictures:    append([]string(nil), p.Pictures...),
		Extra:       p.Extra,
	}
}

// productPayload is the wire form of ProductInput. The API expects numbers,
// not the quoted strings decimal marshals to by default.
type productPayload struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Price       json.Number    `json:"price"`
	Stock       int            `json:"stock"`
	CategoryID  *int64         `json:"category_id"`
	Pictures    []string       `json:"pictures"`
	Extra       map[string]any `json:"extra"`
}

func (in ProductInput) payload() productPayload {
	pictures := in.Pictures
	if pictures == nil {
		pictures = []string{}
	}
	extra := in.Extra
	if extra == nil {
		extra = map[string]any{}
	}
	return productPayload{
		Title:       in.Title,
		Description: in.Description,
		Price:       json.Number(in.Price.String()),
		Stock:       in.Stock,
		CategoryID:  in.CategoryID,
		Pictures:    pictures,
		Extra:       extra,
	}
}
