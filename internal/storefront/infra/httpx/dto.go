package httpx

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// AddItemRequest is the product snapshot the view hands to the cart.
// Missing fields are accepted and stored as zero values.
type AddItemRequest struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Picture     string      `json:"picture"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
}

type CartItemResponse struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Picture     string      `json:"picture"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
	Quantity    int         `json:"quantity"`
	Subtotal    json.Number `json:"subtotal"`
}

type CartResponse struct {
	Items       []CartItemResponse `json:"items"`
	TotalItems  int                `json:"total_items"`
	TotalPrice  json.Number        `json:"total_price"`
	AnimateCart bool               `json:"animate_cart"`
}

type QuantityResponse struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type ListingResponse struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
	Stock       int         `json:"stock"`
	CategoryID  *int64      `json:"category_id,omitempty"`
	Picture     string      `json:"picture"`
	Pictures    []string    `json:"pictures"`
	InCart      int         `json:"in_cart"`
}

type CategoryResponse struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// ProductRequest is the admin form payload.
type ProductRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Price       json.Number    `json:"price"`
	Stock       int            `json:"stock"`
	CategoryID  *int64         `json:"category_id"`
	Pictures    []string       `json:"pictures"`
	Extra       map[string]any `json:"extra"`
}

type ProductResponse struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Price       json.Number    `json:"price"`
	Stock       int            `json:"stock"`
	CategoryID  *int64         `json:"category_id,omitempty"`
	Pictures    []string       `json:"pictures"`
	Extra       map[string]any `json:"extra,omitempty"`
}

type HistoryEntryResponse struct {
	Version     uint64      `json:"version"`
	Op          string      `json:"op"`
	TotalItems  int         `json:"total_items"`
	TotalPrice  json.Number `json:"total_price"`
	AnimateCart bool        `json:"animate_cart"`
	TraceID     string      `json:"trace_id,omitempty"`
	RecordedAt  time.Time   `json:"recorded_at"`
}

type PictureRequest struct {
	FilePath string `json:"file_path"`
}

type PictureResponse struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// parseNumber reads an optional JSON number; empty means zero.
func parseNumber(n json.Number) (decimal.Decimal, error) {
	if n == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(n.String())
}
