package domain

import "github.com/shopspring/decimal"

// State is the whole cart. Items is ordered by first insertion and unique by
// ID; every Quantity is at least 1.
//
// AnimateCart is raised by every add and is never persisted. Only an explicit
// SetAnimation(false) lowers it again.
type State struct {
	Items       []Item
	AnimateCart bool
}

// TotalItems is the sum of all line quantities.
func (s State) TotalItems() int {
	total := 0
	for _, it := range s.Items {
		total += it.Quantity
	}
	return total
}

// TotalPrice is the sum of price * quantity over all lines.
func (s State) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Quantity returns the quantity held for id, or 0 when the product is not in the cart.
func (s State) Quantity(id ProductID) int {
	if i := s.indexOf(id); i >= 0 {
		return s.Items[i].Quantity
	}
	return 0
}

// Clone returns a copy that shares no backing array with s.
func (s State) Clone() State {
	return State{
		Items:       CloneItems(s.Items),
		AnimateCart: s.AnimateCart,
	}
}

func (s State) indexOf(id ProductID) int {
	for i, it := range s.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// CloneItems copies items into a fresh, non-nil slice.
func CloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
