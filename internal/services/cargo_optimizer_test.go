package services

import (
	"slices"
	"testing"

	"cargo-route-service/internal/domain"
)

func item(pax int, kg, pay float64) domain.CargoItem {
	return domain.CargoItem{Passengers: pax, WeightKg: kg, Pay: pay}
}

func TestMaximizeShareableRespectsCapacity(t *testing.T) {
	items := []domain.CargoItem{item(2, 30, 10), item(2, 30, 12), item(1, 50, 7)}

	l := MaximizeShareable(items, 3, 60)

	if l.Pay != 12 {
		t.Fatalf("pay = %v, want 12", l.Pay)
	}
	if l.Passengers > 3 || l.WeightKg > 60 {
		t.Fatalf("load exceeds capacity: pax=%d kg=%v", l.Passengers, l.WeightKg)
	}
	if !slices.Equal(l.Selected.Shareable, []domain.CargoItem{items[1]}) {
		t.Fatalf("selected = %+v", l.Selected.Shareable)
	}
	if !slices.Equal(l.Remainder.Shareable, []domain.CargoItem{items[0], items[2]}) {
		t.Fatalf("remainder = %+v", l.Remainder.Shareable)
	}
}

func TestMaximizeShareableTakesEverythingThatFits(t *testing.T) {
	items := []domain.CargoItem{item(1, 10, 5), item(0, 20, 6), item(2, 0, 7)}

	l := MaximizeShareable(items, 10, 1000)

	if l.Pay != 18 || l.Passengers != 3 || l.WeightKg != 30 {
		t.Fatalf("unexpected load: %+v", l)
	}
	if !slices.Equal(l.Selected.Shareable, items) || len(l.Remainder.Shareable) != 0 {
		t.Fatalf("expected every item selected in order: %+v", l)
	}
}

func TestMaximizeShareableTiesExcludeLaterItem(t *testing.T) {
	first, second := item(1, 5, 10), item(1, 6, 10)

	for i := 0; i < 5; i++ {
		l := MaximizeShareable([]domain.CargoItem{first, second}, 1, 100)
		if !slices.Equal(l.Selected.Shareable, []domain.CargoItem{first}) {
			t.Fatalf("run %d: selected = %+v, want the first item", i, l.Selected.Shareable)
		}
		if !slices.Equal(l.Remainder.Shareable, []domain.CargoItem{second}) {
			t.Fatalf("run %d: remainder = %+v", i, l.Remainder.Shareable)
		}
	}
}

func TestMaximizeShareableSkipsZeroPay(t *testing.T) {
	l := MaximizeShareable([]domain.CargoItem{item(0, 0, 0)}, 4, 100)

	if len(l.Selected.Shareable) != 0 || len(l.Remainder.Shareable) != 1 {
		t.Fatalf("zero-pay item should stay behind: %+v", l)
	}
}

func TestMaximizeShareableResultIsNotAliased(t *testing.T) {
	items := []domain.CargoItem{item(1, 1, 1), item(1, 1, 2), item(1, 1, 3)}

	a := MaximizeShareable(items, 2, 10)
	a.Selected.Shareable = append(a.Selected.Shareable, item(9, 9, 9))
	a.Selected.Shareable[0].Pay = 100

	b := MaximizeShareable(items, 2, 10)
	if b.Pay != 5 || b.Selected.Shareable[0].Pay != 2 {
		t.Fatalf("second call saw mutations of the first: %+v", b)
	}
	if items[1].Pay != 2 {
		t.Fatal("input items were modified")
	}
}

func TestMaximizeExclusive(t *testing.T) {
	tests := []struct {
		name     string
		items    []domain.CargoItem
		wantPay  float64
		wantPax  int
		selected bool
	}{
		{"empty", nil, 0, 0, false},
		{"single zero pay", []domain.CargoItem{item(1, 0, 0)}, 0, 0, false},
		{"maximum wins", []domain.CargoItem{item(1, 0, 5), item(2, 0, 9), item(3, 0, 4)}, 9, 2, true},
		{"later item wins ties", []domain.CargoItem{item(1, 0, 5), item(1, 0, 9), item(2, 0, 9)}, 9, 2, true},
		{"no capacity check", []domain.CargoItem{item(50, 9000, 3)}, 3, 50, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := MaximizeExclusive(tt.items)

			if l.Pay != tt.wantPay || l.Passengers != tt.wantPax {
				t.Fatalf("load = %+v, want pay %v pax %d", l, tt.wantPay, tt.wantPax)
			}
			if got := len(l.Selected.Exclusive) == 1; got != tt.selected {
				t.Fatalf("selected = %+v", l.Selected.Exclusive)
			}
			if n := len(l.Selected.Exclusive) + len(l.Remainder.Exclusive); n != len(tt.items) {
				t.Fatalf("selected+remainder hold %d items, want %d", n, len(tt.items))
			}
		})
	}
}

func TestMaximizeCargo(t *testing.T) {
	t.Run("ties favor shareable", func(t *testing.T) {
		c := domain.Cargo{
			Shareable: []domain.CargoItem{item(1, 10, 6), item(1, 10, 4)},
			Exclusive: []domain.CargoItem{item(4, 0, 10)},
		}

		l := MaximizeCargo(c, 4, 100)

		if l.Pay != 10 || l.HasExclusive() || len(l.Selected.Shareable) != 2 {
			t.Fatalf("unexpected load: %+v", l)
		}
		if !slices.Equal(l.Remainder.Exclusive, c.Exclusive) {
			t.Fatalf("exclusive item should be folded into the remainder: %+v", l.Remainder)
		}
	})

	t.Run("exclusive wins when it pays more", func(t *testing.T) {
		c := domain.Cargo{
			Shareable: []domain.CargoItem{item(1, 10, 6), item(1, 10, 4)},
			Exclusive: []domain.CargoItem{item(4, 0, 11)},
		}

		l := MaximizeCargo(c, 4, 100)

		if l.Pay != 11 || !l.HasExclusive() || len(l.Selected.Shareable) != 0 {
			t.Fatalf("unexpected load: %+v", l)
		}
		if len(l.Remainder.Shareable) != 2 || len(l.Remainder.Exclusive) != 0 {
			t.Fatalf("shareable items should be folded into the remainder: %+v", l.Remainder)
		}
	})
}
