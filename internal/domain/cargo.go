package domain

import "slices"

// CargoItem is a single bookable unit on a leg: a group of passengers,
// a parcel, or both.
type CargoItem struct {
	Passengers int
	WeightKg   float64
	Pay        float64
}

// Cargo is the manifest of a leg, split by class.
//
// Shareable items can be combined freely under the conveyance capacity.
// Exclusive items occupy the whole conveyance: at most one is carried on a
// leg and never together with Shareable items.
type Cargo struct {
	Shareable []CargoItem
	Exclusive []CargoItem
}

// Clone returns a deep copy of the manifest.
func (c Cargo) Clone() Cargo {
	return Cargo{
		Shareable: slices.Clone(c.Shareable),
		Exclusive: slices.Clone(c.Exclusive),
	}
}

// Equal reports whether two manifests hold the same items in the same order.
// Nil and empty slices compare equal.
func (c Cargo) Equal(o Cargo) bool {
	return slices.Equal(c.Shareable, o.Shareable) && slices.Equal(c.Exclusive, o.Exclusive)
}

func (c Cargo) IsEmpty() bool {
	return len(c.Shareable) == 0 && len(c.Exclusive) == 0
}

// Load is the optimizer's answer for one leg: what is carried and what is
// left behind for later legs.
type Load struct {
	Pay        float64
	Passengers int
	WeightKg   float64
	Selected   Cargo
	Remainder  Cargo
}

// HasExclusive reports whether the load carries an Exclusive booking.
func (l Load) HasExclusive() bool { return len(l.Selected.Exclusive) > 0 }
