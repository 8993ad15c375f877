package domain

// Kind tags the operation applied by Reduce.
type Kind string

const (
	OpAdd          Kind = "ADD_ITEM"
	OpRemove       Kind = "REMOVE_ITEM"
	OpClear        Kind = "CLEAR_CART"
	OpSetAnimation Kind = "SET_ANIMATION"
	OpLoad         Kind = "LOAD_CART"
)

// MutatesItems reports whether operations of this kind may change the item
// sequence, and therefore have to be persisted.
func (k Kind) MutatesItems() bool {
	switch k {
	case OpAdd, OpRemove, OpClear, OpLoad:
		return true
	default:
		return false
	}
}

// Operation is a tagged variant: only the payload field matching Kind is read.
type Operation struct {
	Kind      Kind
	Product   Product   // OpAdd
	ProductID ProductID // OpRemove
	Animate   bool      // OpSetAnimation
	Items     []Item    // OpLoad
}

func Add(p Product) Operation { return Operation{Kind: OpAdd, Product: p} }

func Remove(id ProductID) Operation { return Operation{Kind: OpRemove, ProductID: id} }

func Clear() Operation { return Operation{Kind: OpClear} }

func SetAnimation(animate bool) Operation {
	return Operation{Kind: OpSetAnimation, Animate: animate}
}

func Load(items []Item) Operation { return Operation{Kind: OpLoad, Items: items} }

// Reduce applies op to s and returns the next state. It never writes into the
// backing array of s.Items, so a previously returned State stays valid.
func Reduce(s State, op Operation) State {
	switch op.Kind {
	case OpAdd:
		items := CloneItems(s.Items)
		if i := s.indexOf(op.Product.ID); i >= 0 {
			items[i].Quantity++
		} else {
			items = append(items, newItem(op.Product))
		}
		return State{Items: items, AnimateCart: true}

	case OpRemove:
		i := s.indexOf(op.ProductID)
		if i < 0 {
			return s
		}
		if s.Items[i].Quantity > 1 {
			items := CloneItems(s.Items)
			items[i].Quantity--
			return State{Items: items, AnimateCart: s.AnimateCart}
		}
		items := make([]Item, 0, len(s.Items)-1)
		items = append(items, s.Items[:i]...)
		items = append(items, s.Items[i+1:]...)
		return State{Items: items, AnimateCart: s.AnimateCart}

	case OpClear:
		return State{Items: []Item{}, AnimateCart: s.AnimateCart}

	case OpSetAnimation:
		return State{Items: s.Items, AnimateCart: op.Animate}

	case OpLoad:
		return State{Items: normalize(op.Items), AnimateCart: s.AnimateCart}

	default:
		return s
	}
}

// normalize restores the item invariants on externally supplied lines:
// lines with a non-positive quantity are dropped and repeated ids are folded
// into the first occurrence.
func normalize(in []Item) []Item {
	out := make([]Item, 0, len(in))
	seen := make(map[ProductID]int, len(in))
	for _, it := range in {
		if it.Quantity < 1 {
			continue
		}
		if i, ok := seen[it.ID]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		seen[it.ID] = len(out)
		out = append(out, it)
	}
	return out
}
