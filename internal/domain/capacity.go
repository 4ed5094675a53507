package domain

import "fmt"

// Capacity of a conveyance on one leg, in two independent dimensions.
type Capacity struct {
	Passengers int
	WeightKg   float64
}

// Admits reports whether an item fits in the remaining capacity.
func (c Capacity) Admits(it CargoItem) bool {
	return c.Passengers-it.Passengers >= 0 && c.WeightKg-it.WeightKg >= 0
}

// Minus returns the capacity left after carrying pax passengers and kg kilograms.
func (c Capacity) Minus(pax int, kg float64) (Capacity, error) {
	left := Capacity{Passengers: c.Passengers - pax, WeightKg: c.WeightKg - kg}
	if left.Passengers < 0 || left.WeightKg < 0 {
		return c, fmt.Errorf("capacity: load pax=%d kg=%v exceeds capacity pax=%d kg=%v", pax, kg, c.Passengers, c.WeightKg)
	}
	return left, nil
}

// HasRoom reports whether both dimensions still have capacity after a load.
func (c Capacity) HasRoom(pax int, kg float64) bool {
	return pax < c.Passengers && kg < c.WeightKg
}
