package ports

import (
	"context"

	"cargo-route-service/internal/domain"
)

// Port: a boundary for retrieving reference locations.
type LocationRepository interface {
	// Retrieve every known location with its coordinates.
	ListLocations(ctx context.Context) ([]domain.Location, error)
}

// Port: a boundary for retrieving the scheduled job network.
type JobRepository interface {
	// Retrieve all scheduled legs with their cargo manifests.
	// Departures of one origin are returned in a stable order.
	LoadJobGraph(ctx context.Context) (domain.JobGraph, error)
}

// NetworkSource provides both halves of a search network.
type NetworkSource interface {
	LocationRepository
	JobRepository
}
