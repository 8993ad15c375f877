package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func product(id ProductID, price int64) Product {
	return Product{
		ID:          id,
		Title:       "product",
		Picture:     "/static/p.png",
		Description: "desc",
		Price:       decimal.NewFromInt(price),
	}
}

func apply(s State, ops ...Operation) State {
	for _, op := range ops {
		s = Reduce(s, op)
	}
	return s
}

func TestReduceAdd(t *testing.T) {
	t.Run("same id merges into one line", func(t *testing.T) {
		p := product(1, 100)
		s := apply(State{}, Add(p), Add(p))
		if len(s.Items) != 1 {
			t.Fatalf("expected 1 item, got %d", len(s.Items))
		}
		if s.Items[0].Quantity != 2 {
			t.Fatalf("expected quantity 2, got %d", s.Items[0].Quantity)
		}
	})

	t.Run("captured fields are not refreshed", func(t *testing.T) {
		first := product(1, 100)
		later := first
		later.Title = "renamed"
		later.Price = decimal.NewFromInt(999)

		s := apply(State{}, Add(first), Add(later))
		if s.Items[0].Title != "product" || !s.Items[0].Price.Equal(decimal.NewFromInt(100)) {
			t.Fatalf("snapshot was refreshed: %+v", s.Items[0])
		}
	})

	t.Run("new ids append in insertion order", func(t *testing.T) {
		s := apply(State{}, Add(product(3, 1)), Add(product(1, 1)), Add(product(2, 1)))
		got := []ProductID{s.Items[0].ID, s.Items[1].ID, s.Items[2].ID}
		want := []ProductID{3, 1, 2}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("order = %v, want %v", got, want)
			}
		}
	})

	t.Run("raises the animation flag", func(t *testing.T) {
		s := Reduce(State{}, Add(product(1, 1)))
		if !s.AnimateCart {
			t.Fatalf("expected AnimateCart after add")
		}
	})

	t.Run("zero value product is accepted", func(t *testing.T) {
		s := Reduce(State{}, Add(Product{}))
		if len(s.Items) != 1 || s.Items[0].Quantity != 1 {
			t.Fatalf("unexpected state %+v", s)
		}
	})
}

func TestReduceRemove(t *testing.T) {
	t.Run("decrement to removal", func(t *testing.T) {
		p := product(1, 100)
		s := apply(State{}, Add(p), Remove(p.ID))
		if len(s.Items) != 0 {
			t.Fatalf("expected empty cart, got %+v", s.Items)
		}
	})

	t.Run("second remove is a no-op", func(t *testing.T) {
		s := apply(State{}, Add(product(1, 1)), Add(product(2, 1)), Remove(1))
		again := Reduce(s, Remove(1))
		if len(again.Items) != 1 || again.Items[0].ID != 2 {
			t.Fatalf("unexpected state %+v", again.Items)
		}
	})

	t.Run("unknown id leaves state untouched", func(t *testing.T) {
		s := apply(State{}, Add(product(1, 1)))
		s = Reduce(s, SetAnimation(false))
		after := Reduce(s, Remove(42))
		if len(after.Items) != 1 || after.Items[0].Quantity != 1 || after.AnimateCart {
			t.Fatalf("unexpected state %+v", after)
		}
	})

	t.Run("does not touch the animation flag", func(t *testing.T) {
		s := apply(State{}, Add(product(1, 1)), Add(product(1, 1)))
		s = Reduce(s, Remove(1))
		if !s.AnimateCart {
			t.Fatalf("remove lowered AnimateCart")
		}
	})
}

func TestReduceClear(t *testing.T) {
	s := apply(State{}, Add(product(1, 1)), Add(product(2, 1)), Clear())
	if len(s.Items) != 0 {
		t.Fatalf("expected empty items, got %d", len(s.Items))
	}
	s = Reduce(s, Clear())
	if s.Items == nil || len(s.Items) != 0 {
		t.Fatalf("clear should be idempotent and leave a non-nil empty slice")
	}
}

func TestReduceDoesNotAliasPreviousState(t *testing.T) {
	before := apply(State{}, Add(product(1, 1)), Add(product(2, 1)))
	_ = Reduce(before, Add(product(1, 1)))
	_ = Reduce(before, Remove(2))
	if before.Items[0].Quantity != 1 || len(before.Items) != 2 {
		t.Fatalf("previous state was mutated: %+v", before.Items)
	}
}

func TestReduceLoadNormalizes(t *testing.T) {
	s := Reduce(State{AnimateCart: false}, Load([]Item{
		{ID: 1, Quantity: 2, Title: "first"},
		{ID: 2, Quantity: 0},
		{ID: 1, Quantity: 3, Title: "dup"},
		{ID: 3, Quantity: 1},
	}))
	if len(s.Items) != 2 {
		t.Fatalf("expected 2 items, got %+v", s.Items)
	}
	if s.Items[0].Quantity != 5 || s.Items[0].Title != "first" {
		t.Fatalf("duplicate ids not folded: %+v", s.Items[0])
	}
	if s.Items[1].ID != 3 {
		t.Fatalf("unexpected second item %+v", s.Items[1])
	}
}

func TestReduceUnknownKind(t *testing.T) {
	s := apply(State{}, Add(product(1, 1)))
	after := Reduce(s, Operation{Kind: "BOGUS"})
	if len(after.Items) != 1 || !after.AnimateCart {
		t.Fatalf("unknown kind changed state: %+v", after)
	}
}

func TestScenarioTotals(t *testing.T) {
	steps := []struct {
		op         Operation
		totalItems int
		totalPrice int64
		lines      int
	}{
		{Add(product(1, 100)), 1, 100, 1},
		{Add(product(1, 100)), 2, 200, 1},
		{Add(product(2, 50)), 3, 250, 2},
		{Remove(1), 2, 150, 2},
		{Remove(1), 1, 50, 1},
	}

	var s State
	for i, step := range steps {
		s = Reduce(s, step.op)
		if s.TotalItems() != step.totalItems {
			t.Fatalf("step %d: totalItems = %d, want %d", i, s.TotalItems(), step.totalItems)
		}
		if !s.TotalPrice().Equal(decimal.NewFromInt(step.totalPrice)) {
			t.Fatalf("step %d: totalPrice = %s, want %d", i, s.TotalPrice(), step.totalPrice)
		}
		if len(s.Items) != step.lines {
			t.Fatalf("step %d: lines = %d, want %d", i, len(s.Items), step.lines)
		}
	}
	if s.Items[0].ID != 2 {
		t.Fatalf("expected only product 2 to remain, got %+v", s.Items)
	}
}

func TestQuantity(t *testing.T) {
	var s State
	if q := s.Quantity(7); q != 0 {
		t.Fatalf("quantity of unknown product = %d", q)
	}
	s = apply(s, Add(product(7, 1)), Add(product(7, 1)))
	if q := s.Quantity(7); q != 2 {
		t.Fatalf("quantity = %d, want 2", q)
	}
	s = Reduce(s, Remove(7))
	if q := s.Quantity(7); q != 1 {
		t.Fatalf("quantity = %d, want 1", q)
	}
}

func TestTotalPriceIsExact(t *testing.T) {
	p := product(1, 0)
	p.Price = decimal.RequireFromString("0.1")
	s := apply(State{}, Add(p), Add(p), Add(p))
	if !s.TotalPrice().Equal(decimal.RequireFromString("0.3")) {
		t.Fatalf("total = %s, want 0.3", s.TotalPrice())
	}
}
