package ports

import (
	"context"

	"cargo-route-service/internal/domain"
)

// Persistent storage for proximity caches, keyed by location-set fingerprint and radius.
type ProximityStore interface {
	// Return every cached origin for a key. Unknown keys
	// yield an empty map and no error.
	LoadProximity(ctx context.Context, key string) (map[string][]domain.Nearby, error)
	// Store entries for a key, replacing existing origins.
	SaveProximity(ctx context.Context, key string, entries map[string][]domain.Nearby) error
}
