package dto

import "cargo-route-service/internal/domain"

func (l Location) Domain() domain.Location {
	return domain.Location{ID: l.ID, Coordinates: domain.Coordinates{Lat: l.Lat, Lon: l.Lon}}
}

func (l Leg) Domain() domain.Leg {
	return domain.Leg{
		From:     l.From,
		To:       l.To,
		Distance: l.DistanceMiles,
		Cargo: domain.Cargo{
			Shareable: itemsToDomain(l.Cargo.Shareable),
			Exclusive: itemsToDomain(l.Cargo.Exclusive),
		},
	}
}

// Apply returns base with every set field of o replaced.
func (o *SearchOptions) Apply(base domain.SearchOptions) domain.SearchOptions {
	if o == nil {
		return base
	}
	if o.MaxPassengers != nil {
		base.MaxPassengers = *o.MaxPassengers
	}
	if o.MaxWeightKg != nil {
		base.MaxWeightKg = *o.MaxWeightKg
	}
	if o.MaxHops != nil {
		base.MaxHops = *o.MaxHops
	}
	if o.MaxStopovers != nil {
		base.MaxStopovers = *o.MaxStopovers
	}
	if o.MaxBadLegs != nil {
		base.MaxBadLegs = *o.MaxBadLegs
	}
	if o.MinPaxLoad != nil {
		base.MinPaxLoad = *o.MinPaxLoad
	}
	if o.MinKgLoad != nil {
		base.MinKgLoad = *o.MinKgLoad
	}
	if o.NearbyMiles != nil {
		base.NearbyMiles = *o.NearbyMiles
	}
	return base
}

func FromCandidates(cands []domain.RouteCandidate) []RouteCandidate {
	out := make([]RouteCandidate, 0, len(cands))
	for _, c := range cands {
		loads := make([]Cargo, 0, len(c.Loads))
		for _, l := range c.Loads {
			loads = append(loads, Cargo{
				Shareable: itemsFromDomain(l.Shareable),
				Exclusive: itemsFromDomain(l.Exclusive),
			})
		}
		out = append(out, RouteCandidate{
			Path:          c.Path,
			Loads:         loads,
			Pay:           c.Pay,
			DistanceMiles: c.Distance,
			PayPerMile:    c.PayPerMile(),
		})
	}
	return out
}

func itemsToDomain(items []CargoItem) []domain.CargoItem {
	out := make([]domain.CargoItem, 0, len(items))
	for _, it := range items {
		out = append(out, domain.CargoItem{Passengers: it.Passengers, WeightKg: it.WeightKg, Pay: it.Pay})
	}
	return out
}

// Always non-nil so loads encode as [] rather than null.
func itemsFromDomain(items []domain.CargoItem) []CargoItem {
	out := make([]CargoItem, 0, len(items))
	for _, it := range items {
		out = append(out, CargoItem{Passengers: it.Passengers, WeightKg: it.WeightKg, Pay: it.Pay})
	}
	return out
}
