package app

import (
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/supermarket-storefront/internal/cart/domain"
)

// storedItem is the persisted shape of a cart line. Price stays a JSON number
// so the stored value matches what browser clients wrote before.
type storedItem struct {
	ID          domain.ProductID `json:"id"`
	Title       string           `json:"title"`
	Picture     string           `json:"picture"`
	Description string           `json:"description"`
	Price       json.Number      `json:"price"`
	Quantity    int              `json:"quantity"`
}

// EncodeItems serializes the full item sequence.
func EncodeItems(items []domain.Item) (string, error) {
	out := make([]storedItem, len(items))
	for i, it := range items {
		out[i] = storedItem{
			ID:          it.ID,
			Title:       it.Title,
			Picture:     it.Picture,
			Description: it.Description,
			Price:       json.Number(it.Price.String()),
			Quantity:    it.Quantity,
		}
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", errors.Wrap(err, "cart: encode items")
	}
	return string(b), nil
}

// DecodeItems parses a value written by EncodeItems. A JSON null decodes to
// an empty cart.
func DecodeItems(raw string) ([]domain.Item, error) {
	var in []storedItem
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return nil, errors.Wrap(err, "cart: decode items")
	}

	items := make([]domain.Item, 0, len(in))
	for _, it := range in {
		price := decimal.Zero
		if it.Price != "" {
			p, err := decimal.NewFromString(it.Price.String())
			if err != nil {
				return nil, errors.Wrapf(err, "cart: decode price of item %d", it.ID)
			}
			price = p
		}
		items = append(items, domain.Item{
			ID:          it.ID,
			Title:       it.Title,
			Picture:     it.Picture,
			Description: it.Description,
			Price:       price,
			Quantity:    it.Quantity,
		})
	}
	return items, nil
}
