package services

import (
	"context"
	"fmt"

	"cargo-route-service/internal/domain"
	"cargo-route-service/internal/ports"

	"golang.org/x/sync/errgroup"
)

// LoadNetwork fetches locations and the job graph concurrently.
func LoadNetwork(ctx context.Context, src ports.NetworkSource) (domain.JobGraph, []domain.Location, error) {
	var (
		jobs      domain.JobGraph
		locations []domain.Location
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		locations, err = src.ListLocations(gctx)
		if err != nil {
			return fmt.Errorf("list locations: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		jobs, err = src.LoadJobGraph(gctx)
		if err != nil {
			return fmt.Errorf("load job graph: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("load network: %w", err)
	}
	return jobs, locations, nil
}
