package services

import (
	"slices"

	"cargo-route-service/internal/domain"
)

type shareableKey struct {
	n   int
	pax int
	kg  float64
}

// shareableSolver memoizes the two-dimensional 0/1 knapsack for one call.
type shareableSolver struct {
	items []domain.CargoItem
	memo  map[shareableKey]domain.Load
}

// solve returns the best load among the first n items under the given capacity.
func (s *shareableSolver) solve(n int, pax int, kg float64) domain.Load {
	if n == 0 {
		return domain.Load{}
	}

	key := shareableKey{n: n, pax: pax, kg: kg}
	if l, ok := s.memo[key]; ok {
		return l
	}

	it := s.items[n-1]
	without := s.solve(n-1, pax, kg)

	if (domain.Capacity{Passengers: pax, WeightKg: kg}).Admits(it) {
		with := s.solve(n-1, pax-it.Passengers, kg-it.WeightKg)
		// Strictly greater: on equal pay the item stays behind.
		if with.Pay+it.Pay > without.Pay {
			l := domain.Load{
				Pay:        with.Pay + it.Pay,
				Passengers: with.Passengers + it.Passengers,
				WeightKg:   with.WeightKg + it.WeightKg,
				Selected:   domain.Cargo{Shareable: append(slices.Clip(with.Selected.Shareable), it)},
				Remainder:  domain.Cargo{Shareable: with.Remainder.Shareable},
			}
			s.memo[key] = l
			return l
		}
	}

	l := domain.Load{
		Pay:        without.Pay,
		Passengers: without.Passengers,
		WeightKg:   without.WeightKg,
		Selected:   domain.Cargo{Shareable: without.Selected.Shareable},
		Remainder:  domain.Cargo{Shareable: append(slices.Clip(without.Remainder.Shareable), it)},
	}
	s.memo[key] = l
	return l
}

// MaximizeShareable selects the subset of items with the highest total pay
// that fits within maxPax passengers and maxKg kilograms.
//
// Selected and Remainder keep the input order. Slices in the result are never
// shared with memo entries, so callers may append to them.
func MaximizeShareable(items []domain.CargoItem, maxPax int, maxKg float64) domain.Load {
	s := &shareableSolver{
		items: items,
		memo:  make(map[shareableKey]domain.Load),
	}
	l := s.solve(len(items), maxPax, maxKg)
	l.Selected.Shareable = slices.Clone(l.Selected.Shareable)
	l.Remainder.Shareable = slices.Clone(l.Remainder.Shareable)
	return l
}

// MaximizeExclusive selects at most one item: the best paid one.
//
// Each item is compared against the best of the items after it and taken only
// when it pays strictly more, so among equal pays the last one wins and a
// single zero-pay item is left behind. Capacity is not checked here.
func MaximizeExclusive(items []domain.CargoItem) domain.Load {
	if len(items) == 0 {
		return domain.Load{}
	}

	it := items[0]
	rest := items[1:]
	skip := MaximizeExclusive(rest)

	if it.Pay > skip.Pay {
		return domain.Load{
			Pay:        it.Pay,
			Passengers: it.Passengers,
			WeightKg:   it.WeightKg,
			Selected:   domain.Cargo{Exclusive: []domain.CargoItem{it}},
			Remainder:  domain.Cargo{Exclusive: slices.Clone(rest)},
		}
	}

	skip.Remainder.Exclusive = append(slices.Clip(skip.Remainder.Exclusive), it)
	return skip
}

// MaximizeCargo picks the better of the best Shareable bundle and the best
// single Exclusive item. Ties go to the Shareable bundle. The losing class is
// folded back into the remainder, so Remainder plus Selected always holds
// every input item.
func MaximizeCargo(cargo domain.Cargo, maxPax int, maxKg float64) domain.Load {
	share := MaximizeShareable(cargo.Shareable, maxPax, maxKg)
	excl := MaximizeExclusive(cargo.Exclusive)

	if share.Pay >= excl.Pay {
		return domain.Load{
			Pay:        share.Pay,
			Passengers: share.Passengers,
			WeightKg:   share.WeightKg,
			Selected:   domain.Cargo{Shareable: share.Selected.Shareable},
			Remainder: domain.Cargo{
				Shareable: share.Remainder.Shareable,
				Exclusive: append(slices.Clip(excl.Remainder.Exclusive), excl.Selected.Exclusive...),
			},
		}
	}

	return domain.Load{
		Pay:        excl.Pay,
		Passengers: excl.Passengers,
		WeightKg:   excl.WeightKg,
		Selected:   domain.Cargo{Exclusive: excl.Selected.Exclusive},
		Remainder: domain.Cargo{
			Shareable: append(slices.Clip(share.Remainder.Shareable), share.Selected.Shareable...),
			Exclusive: excl.Remainder.Exclusive,
		},
	}
}
