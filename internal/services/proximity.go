package services

import (
	"fmt"
	"math"

	"cargo-route-service/internal/domain"
	"cargo-route-service/internal/ports"
)

// FindNearby returns the candidates within maxMiles of origin.
//
// Distances are rounded to whole statute miles before the strict comparison,
// so a location 19.6 miles away is reported at 20 and excluded from a 20 mile
// radius. The origin itself is never returned. Candidate order is preserved.
func FindNearby(
	origin string,
	candidates *domain.LocationSet,
	geo ports.Geodesic,
	maxMiles float64,
) ([]domain.Nearby, error) {
	if !(maxMiles > 0) {
		return nil, fmt.Errorf("find nearby: %w: distance threshold must be positive (got %v)", domain.ErrInvalidInput, maxMiles)
	}

	from, ok := candidates.Coordinates(origin)
	if !ok {
		return nil, fmt.Errorf("find nearby: %w: missing coordinates for origin %q", domain.ErrInvalidInput, origin)
	}

	out := make([]domain.Nearby, 0)
	for _, id := range candidates.IDs() {
		if id == origin {
			continue
		}
		to, _ := candidates.Coordinates(id)

		miles := roundedMiles(geo, from, to)
		if miles < maxMiles {
			out = append(out, domain.Nearby{ID: id, Miles: miles})
		}
	}

	return out, nil
}

func roundedMiles(geo ports.Geodesic, a, b domain.Coordinates) float64 {
	return math.Round(geo.StatuteMiles(a, b))
}
