package ports

import "cargo-route-service/internal/domain"

// Contract for the great-circle distance between two coordinates.
// Implementations must be pure: same inputs, same output, no I/O.
type Geodesic interface {
	// Return the distance in statute miles.
	StatuteMiles(a, b domain.Coordinates) float64
}
