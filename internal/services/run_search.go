package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"

	"cargo-route-service/internal/domain"
	"cargo-route-service/internal/platform/obs"
	"cargo-route-service/internal/ports"
)

const (
	StatusProgress = "progress"
	StatusFinished = "finished"
	StatusError    = "error"
)

// SearchRequest is one invocation of the route search.
type SearchRequest struct {
	Origin    string
	Jobs      domain.JobGraph
	Locations []domain.Location
	Options   domain.SearchOptions
	// Optional cache carried over from earlier searches on the same locations.
	Proximity *domain.ProximityCache
}

// SearchEvent is a notification emitted while a search runs. A search emits
// any number of progress events followed by exactly one finished or error event.
type SearchEvent struct {
	Status   string
	Progress float64
	Results  []domain.RouteCandidate
	Error    string
}

type SearchResult struct {
	Results      []domain.RouteCandidate
	Stats        SearchStats
	ProgressStep float64
}

// RunSearch validates the request, runs the route search from its origin and
// reports progress and the terminal event through emit (which may be nil).
//
// The request's job graph is mutated while the search runs and restored
// before RunSearch returns; callers sharing a graph must pass a clone.
// Progress is an approximation: each edge visit at any depth adds
// 100 / (nearby locations + direct destinations + 1) percent, so the total
// may fall short of or exceed 100.
func RunSearch(
	ctx context.Context,
	req SearchRequest,
	geo ports.Geodesic,
	emit func(SearchEvent),
) (_ SearchResult, err error) {
	defer obs.Time(ctx, "search.Run")(&err)

	if emit == nil {
		emit = func(SearchEvent) {}
	}
	defer func() {
		if err != nil {
			emit(SearchEvent{Status: StatusError, Error: err.Error()})
		}
	}()

	locations, err := ValidateSearchRequest(req)
	if err != nil {
		return SearchResult{}, fmt.Errorf("run search: %w", err)
	}

	origin := strings.TrimSpace(req.Origin)

	var step float64
	search := NewRouteSearch(
		req.Jobs,
		req.Options,
		locations,
		geo,
		req.Proximity,
		WithProgress(func() { emit(SearchEvent{Status: StatusProgress, Progress: step}) }),
	)

	nearby, err := search.NearbyOf(origin)
	if err != nil {
		return SearchResult{}, fmt.Errorf("run search: nearby of %q: %w", origin, err)
	}
	step = 100 / float64(len(nearby)+len(req.Jobs.Departures(origin))+1)

	results, err := search.Search(ctx, origin)
	if err != nil {
		if errors.Is(err, domain.ErrStateCorruption) {
			log.Printf("op=search.Run origin=%s FATAL err=%v", origin, err)
		}
		return SearchResult{}, fmt.Errorf("run search: %w", err)
	}

	emit(SearchEvent{Status: StatusFinished, Results: results})

	return SearchResult{
		Results:      results,
		Stats:        search.Stats(),
		ProgressStep: step,
	}, nil
}

// ValidateSearchRequest rejects requests the search cannot run on and returns
// the candidate location set. Every failure wraps domain.ErrInvalidInput.
func ValidateSearchRequest(req SearchRequest) (*domain.LocationSet, error) {
	origin := strings.TrimSpace(req.Origin)
	if origin == "" {
		return nil, fmt.Errorf("validate search: %w: origin must be non-empty", domain.ErrInvalidInput)
	}

	if err := req.Options.Validate(); err != nil {
		return nil, fmt.Errorf("validate search: %w", err)
	}

	locations := domain.NewLocationSet(req.Locations)
	for _, l := range req.Locations {
		if strings.TrimSpace(l.ID) == "" {
			return nil, fmt.Errorf("validate search: %w: location with empty id", domain.ErrInvalidInput)
		}
		c := l.Coordinates
		if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) || c.Lat < -90 || c.Lat > 90 || c.Lon < -180 || c.Lon > 180 {
			return nil, fmt.Errorf("validate search: %w: location %q has invalid coordinates (%v, %v)", domain.ErrInvalidInput, l.ID, c.Lat, c.Lon)
		}
	}

	if _, ok := locations.Coordinates(origin); !ok {
		return nil, fmt.Errorf("validate search: %w: missing coordinates for origin %q", domain.ErrInvalidInput, origin)
	}

	for from, legs := range req.Jobs {
		for _, l := range legs {
			if l == nil {
				return nil, fmt.Errorf("validate search: %w: nil leg under origin %q", domain.ErrInvalidInput, from)
			}
			if l.From != from {
				return nil, fmt.Errorf("validate search: %w: leg %s->%s listed under origin %q", domain.ErrInvalidInput, l.From, l.To, from)
			}
			if _, ok := locations.Coordinates(l.From); !ok {
				return nil, fmt.Errorf("validate search: %w: missing coordinates for %q", domain.ErrInvalidInput, l.From)
			}
			if _, ok := locations.Coordinates(l.To); !ok {
				return nil, fmt.Errorf("validate search: %w: missing coordinates for %q", domain.ErrInvalidInput, l.To)
			}
			if l.Distance < 0 || math.IsNaN(l.Distance) {
				return nil, fmt.Errorf("validate search: %w: leg %s->%s has negative distance %v", domain.ErrInvalidInput, l.From, l.To, l.Distance)
			}
			for _, it := range l.Cargo.Shareable {
				if err := domain.ValidateItem(it); err != nil {
					return nil, fmt.Errorf("validate search: leg %s->%s: %w", l.From, l.To, err)
				}
			}
			for _, it := range l.Cargo.Exclusive {
				if err := domain.ValidateItem(it); err != nil {
					return nil, fmt.Errorf("validate search: leg %s->%s: %w", l.From, l.To, err)
				}
			}
		}
	}

	return locations, nil
}
