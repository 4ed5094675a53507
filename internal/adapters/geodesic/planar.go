package geodesic

import (
	"math"

	"cargo-route-service/internal/domain"
)

// Planar treats coordinates as points on a flat grid measured in miles
// (Lat is y, Lon is x). It gives exact, easy to reason about distances for
// tests and synthetic networks.
type Planar struct{}

func NewPlanar() Planar { return Planar{} }

func (Planar) StatuteMiles(a, b domain.Coordinates) float64 {
	return math.Hypot(b.Lat-a.Lat, b.Lon-a.Lon)
}
