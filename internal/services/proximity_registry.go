package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	"cargo-route-service/internal/domain"
	"cargo-route-service/internal/ports"

	"golang.org/x/sync/singleflight"
)

// ProximityKey identifies a proximity cache: the same locations searched
// with a different radius produce different neighbors.
func ProximityKey(locations *domain.LocationSet, maxMiles float64) string {
	return fmt.Sprintf("%s-%g", locations.Fingerprint(), maxMiles)
}

// ProximityRegistry keeps one ProximityCache per location set and radius so that
// successive searches over the same locations reuse earlier work.
//
// Caches are loaded from the optional store on first use; concurrent first
// uses of the same set share a single load.
type ProximityRegistry struct {
	store ports.ProximityStore

	mu     sync.Mutex
	caches map[string]*domain.ProximityCache
	group  singleflight.Group
}

func NewProximityRegistry(store ports.ProximityStore) *ProximityRegistry {
	return &ProximityRegistry{
		store:  store,
		caches: make(map[string]*domain.ProximityCache),
	}
}

// Get returns the cache for a location set and radius, loading it from the
// store if needed.
func (r *ProximityRegistry) Get(ctx context.Context, locations *domain.LocationSet, maxMiles float64) (*domain.ProximityCache, error) {
	fp := ProximityKey(locations, maxMiles)

	r.mu.Lock()
	c, ok := r.caches[fp]
	r.mu.Unlock()
	if ok {
		return c, nil
	}

	v, err, _ := r.group.Do(fp, func() (any, error) {
		r.mu.Lock()
		if c, ok := r.caches[fp]; ok {
			r.mu.Unlock()
			return c, nil
		}
		r.mu.Unlock()

		c := domain.NewProximityCache()
		if r.store != nil {
			entries, err := r.store.LoadProximity(ctx, fp)
			if err != nil {
				return nil, fmt.Errorf("load proximity %s: %w", fp, err)
			}
			c.Merge(entries)
		}

		r.mu.Lock()
		r.caches[fp] = c
		r.mu.Unlock()
		return c, nil
	})
	if err != nil {
		return nil, fmt.Errorf("proximity registry: %w", err)
	}
	return v.(*domain.ProximityCache), nil
}

// Persist writes the cache of a location set back to the store.
// It is a no-op without a store.
func (r *ProximityRegistry) Persist(
	ctx context.Context,
	locations *domain.LocationSet,
	maxMiles float64,
	cache *domain.ProximityCache,
) error {
	if r.store == nil || cache.Len() == 0 {
		return nil
	}

	fp := ProximityKey(locations, maxMiles)
	if err := r.store.SaveProximity(ctx, fp, cache.Snapshot()); err != nil {
		return fmt.Errorf("proximity registry: save %s: %w", fp, err)
	}
	log.Printf("op=proximity.Persist fingerprint=%s origins=%d", fp, cache.Len())
	return nil
}

// WarmProximity computes the neighbors of every location not yet cached.
func WarmProximity(
	ctx context.Context,
	locations *domain.LocationSet,
	geo ports.Geodesic,
	maxMiles float64,
	cache *domain.ProximityCache,
) (int, error) {
	added := 0
	for _, id := range locations.IDs() {
		if err := ctx.Err(); err != nil {
			return added, err
		}
		if _, ok := cache.Get(id); ok {
			continue
		}

		n, err := FindNearby(id, locations, geo, maxMiles)
		if err != nil {
			return added, fmt.Errorf("warm proximity: %w", err)
		}
		cache.Put(id, n)
		added++
	}
	return added, nil
}
