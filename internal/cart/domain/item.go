package domain

import "github.com/shopspring/decimal"

// ProductID identifies a catalog product. It is the merge key for cart lines.
type ProductID int64

// Product is the snapshot a catalog view hands to the cart. It is stored as
// given; the cart never validates or refreshes it.
type Product struct {
	ID          ProductID
	Title       string
	Picture     string
	Description string
	Price       decimal.Decimal
}

// Item is one cart line: the product as it was when first added, plus a quantity.
type Item struct {
	ID          ProductID
	Title       string
	Picture     string
	Description string
	Price       decimal.Decimal
	Quantity    int
}

func newItem(p Product) Item {
	return Item{
		ID:          p.ID,
		Title:       p.Title,
		Picture:     p.Picture,
		Description: p.Description,
		Price:       p.Price,
		Quantity:    1,
	}
}

// Product returns the captured snapshot of the line, without the quantity.
func (i Item) Product() Product {
	return Product{
		ID:          i.ID,
		Title:       i.Title,
		Picture:     i.Picture,
		Description: i.Description,
		Price:       i.Price,
	}
}

func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
