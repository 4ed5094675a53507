package domain

import (
	"fmt"
	"math"
)

const (
	DefaultNearbyMiles  = 20
	DefaultMaxStopovers = 3
)

// SearchOptions bound one search. They are read-only for its duration.
type SearchOptions struct {
	MaxPassengers int
	MaxWeightKg   float64

	MaxHops      int
	MaxStopovers int
	MaxBadLegs   int

	// A leg whose load is below both minimums is a "bad" leg.
	MinPaxLoad int
	MinKgLoad  float64

	// Radius used to find ferry targets around a location.
	NearbyMiles float64
}

// Capacity returns the per-leg capacity described by the options.
func (o SearchOptions) Capacity() Capacity {
	return Capacity{Passengers: o.MaxPassengers, WeightKg: o.MaxWeightKg}
}

// Validate reports the first option that makes a search meaningless.
func (o SearchOptions) Validate() error {
	switch {
	case o.MaxPassengers < 0:
		return fmt.Errorf("%w: max passengers must not be negative (got %d)", ErrInvalidInput, o.MaxPassengers)
	case o.MaxWeightKg < 0 || math.IsNaN(o.MaxWeightKg):
		return fmt.Errorf("%w: max weight must not be negative (got %v)", ErrInvalidInput, o.MaxWeightKg)
	case o.MaxHops < 0:
		return fmt.Errorf("%w: max hops must not be negative (got %d)", ErrInvalidInput, o.MaxHops)
	case o.MaxStopovers < 0:
		return fmt.Errorf("%w: max stopovers must not be negative (got %d)", ErrInvalidInput, o.MaxStopovers)
	case o.MaxBadLegs < 0:
		return fmt.Errorf("%w: max bad legs must not be negative (got %d)", ErrInvalidInput, o.MaxBadLegs)
	case o.MinPaxLoad < 0:
		return fmt.Errorf("%w: min passenger load must not be negative (got %d)", ErrInvalidInput, o.MinPaxLoad)
	case o.MinKgLoad < 0 || math.IsNaN(o.MinKgLoad):
		return fmt.Errorf("%w: min weight load must not be negative (got %v)", ErrInvalidInput, o.MinKgLoad)
	case !(o.NearbyMiles > 0):
		return fmt.Errorf("%w: nearby distance threshold must be positive (got %v)", ErrInvalidInput, o.NearbyMiles)
	}
	return nil
}

// ValidateItem rejects cargo items with negative or NaN quantities.
func ValidateItem(it CargoItem) error {
	if it.Passengers < 0 {
		return fmt.Errorf("%w: cargo passengers must not be negative (got %d)", ErrInvalidInput, it.Passengers)
	}
	if it.WeightKg < 0 || math.IsNaN(it.WeightKg) {
		return fmt.Errorf("%w: cargo weight must not be negative (got %v)", ErrInvalidInput, it.WeightKg)
	}
	if it.Pay < 0 || math.IsNaN(it.Pay) {
		return fmt.Errorf("%w: cargo pay must not be negative (got %v)", ErrInvalidInput, it.Pay)
	}
	return nil
}
