package services

import (
	"context"
	"errors"
	"testing"

	"cargo-route-service/internal/domain"
)

type fakeSource struct {
	locations []domain.Location
	legs      []domain.Leg
	err       error
}

func (f fakeSource) ListLocations(context.Context) ([]domain.Location, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.locations, nil
}

func (f fakeSource) LoadJobGraph(context.Context) (domain.JobGraph, error) {
	return domain.NewJobGraph(f.legs), nil
}

func TestLoadNetwork(t *testing.T) {
	src := fakeSource{
		locations: []domain.Location{loc("A", 0, 0), loc("B", 0, 1)},
		legs:      []domain.Leg{{From: "A", To: "B", Distance: 1}},
	}

	jobs, locs, err := LoadNetwork(context.Background(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(locs) != 2 {
		t.Fatalf("locations = %+v", locs)
	}
	if _, ok := jobs.Find("A", "B"); !ok {
		t.Fatal("expected A->B")
	}

	boom := errors.New("boom")
	if _, _, err := LoadNetwork(context.Background(), fakeSource{err: boom}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}
