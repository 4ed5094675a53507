package geodesic

import (
	"math"

	"cargo-route-service/internal/domain"
)

const (
	earthRadiusMeters    = 6371000.0
	metersPerStatuteMile = 1609.344
)

// Haversine computes great-circle distances on a spherical Earth.
type Haversine struct{}

func NewHaversine() Haversine { return Haversine{} }

// Meters returns the great-circle distance between two coordinates.
func (Haversine) Meters(a, b domain.Coordinates) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func (h Haversine) StatuteMiles(a, b domain.Coordinates) float64 {
	return h.Meters(a, b) / metersPerStatuteMile
}
