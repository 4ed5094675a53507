package services

import (
	"context"
	"fmt"
	"slices"

	"cargo-route-service/internal/domain"
	"cargo-route-service/internal/ports"
)

// SearchStats counts the work done by one search.
type SearchStats struct {
	EdgesVisited int
	LegsLoaded   int
	FerryHops    int
	Candidates   int
}

type SearchOption func(*RouteSearch)

// WithProgress registers a callback invoked once per edge visited, at any
// depth, before the edge is evaluated.
func WithProgress(fn func()) SearchOption {
	return func(s *RouteSearch) { s.onEdge = fn }
}

// RouteSearch enumerates profitable routes over a job graph.
//
// The search is depth-first over an explicit frame stack. While the subtree
// below a scheduled leg is explored, that leg's cargo is replaced by what
// the leg's load left behind, so deeper visits of the same leg only see
// unclaimed items. The original cargo is restored before the leg's results
// are combined, and on every error path.
//
// A RouteSearch mutates its job graph and is not safe for concurrent use.
type RouteSearch struct {
	jobs      domain.JobGraph
	opts      domain.SearchOptions
	locations *domain.LocationSet
	geo       ports.Geodesic
	proximity *domain.ProximityCache
	onEdge    func()
	stats     SearchStats
}

func NewRouteSearch(
	jobs domain.JobGraph,
	opts domain.SearchOptions,
	locations *domain.LocationSet,
	geo ports.Geodesic,
	proximity *domain.ProximityCache,
	options ...SearchOption,
) *RouteSearch {
	if proximity == nil {
		proximity = domain.NewProximityCache()
	}
	s := &RouteSearch{
		jobs:      jobs,
		opts:      opts,
		locations: locations,
		geo:       geo,
		proximity: proximity,
	}
	for _, o := range options {
		o(s)
	}
	return s
}

func (s *RouteSearch) Stats() SearchStats { return s.stats }

// frame is one pending call of the depth-first search.
type frame struct {
	origin     string
	hops       int
	history    []string
	allowLocal bool
	badLegs    int

	firstVisit bool
	restricted bool
	restrictTo string

	legIdx       int
	nearby       []domain.Nearby
	nearbyLoaded bool
	nearbyIdx    int

	edge *pendingEdge
	out  []domain.RouteCandidate
}

// pendingEdge is the edge whose subtree is currently being explored.
type pendingEdge struct {
	to       string
	ferry    bool
	miles    float64
	leg      *domain.Leg
	load     domain.Load
	stops    []domain.Stopover
	checkout *legCheckout
}

// legCheckout holds a leg's cargo while its subtree runs.
type legCheckout struct {
	leg      *domain.Leg
	original domain.Cargo
	snapshot domain.Cargo
	released bool
}

func checkoutLeg(leg *domain.Leg, remainder domain.Cargo) *legCheckout {
	c := &legCheckout{
		leg:      leg,
		original: leg.Cargo,
		snapshot: leg.Cargo.Clone(),
	}
	leg.Cargo = remainder
	return c
}

// release restores the leg and checks nothing rewrote its items in place.
func (c *legCheckout) release() error {
	if c.released {
		return nil
	}
	c.released = true
	c.leg.Cargo = c.original

	if !c.leg.Cargo.Equal(c.snapshot) {
		return fmt.Errorf("%w: cargo of leg %s->%s changed while checked out", domain.ErrStateCorruption, c.leg.From, c.leg.To)
	}
	return nil
}

func (s *RouteSearch) newFrame(origin string, hops int, history []string, allowLocal bool, badLegs int) *frame {
	f := &frame{
		origin:     origin,
		hops:       hops,
		history:    history,
		allowLocal: allowLocal,
		badLegs:    badLegs,
	}

	// A revisited location may only continue the way it went the first time.
	idx := slices.Index(history, origin)
	f.firstVisit = idx < 0
	if idx >= 0 && idx+1 < len(history) {
		f.restricted = true
		f.restrictTo = history[idx+1]
	}
	return f
}

// Search returns every route candidate reachable from origin within the
// hop and bad-leg budgets of the options. Candidates are unsorted.
func (s *RouteSearch) Search(ctx context.Context, origin string) (_ []domain.RouteCandidate, err error) {
	stack := []*frame{s.newFrame(origin, s.opts.MaxHops, nil, true, s.opts.MaxBadLegs)}

	defer func() {
		if err == nil {
			return
		}
		for i := len(stack) - 1; i >= 0; i-- {
			if e := stack[i].edge; e != nil && e.checkout != nil {
				_ = e.checkout.release()
			}
		}
	}()

	for {
		top := stack[len(stack)-1]

		child, err := s.advance(ctx, top)
		if err != nil {
			return nil, fmt.Errorf("route search: from %q: %w", top.origin, err)
		}
		if child != nil {
			stack = append(stack, child)
			continue
		}

		stack = stack[:len(stack)-1]
		if len(stack) == 0 {
			s.stats.Candidates = len(top.out)
			return top.out, nil
		}

		parent := stack[len(stack)-1]
		if err := s.complete(parent, top.out); err != nil {
			return nil, fmt.Errorf("route search: from %q: %w", parent.origin, err)
		}
	}
}

// advance moves f to its next explorable edge and returns the frame for the
// edge's destination, or nil once f has no edges left.
func (s *RouteSearch) advance(ctx context.Context, f *frame) (*frame, error) {
	if f.hops == 0 {
		return nil, nil
	}

	departures := s.jobs.Departures(f.origin)
	next := append(slices.Clip(f.history), f.origin)

	for f.legIdx < len(departures) {
		leg := departures[f.legIdx]
		f.legIdx++

		if err := s.visitEdge(ctx); err != nil {
			return nil, err
		}
		if f.restricted && f.restrictTo != leg.To {
			continue
		}

		load := MaximizeCargo(leg.Cargo, s.opts.MaxPassengers, s.opts.MaxWeightKg)
		if load.Pay <= 0 {
			continue
		}

		badLegs := f.badLegs
		if load.Passengers < s.opts.MinPaxLoad && load.WeightKg < s.opts.MinKgLoad {
			if badLegs == 0 {
				continue
			}
			badLegs--
		}

		stops := []domain.Stopover{{}}
		capacity := s.opts.Capacity()
		if capacity.HasRoom(load.Passengers, load.WeightKg) && !load.HasExclusive() && f.firstVisit {
			room, err := capacity.Minus(load.Passengers, load.WeightKg)
			if err != nil {
				return nil, err
			}
			planned, err := PlanStopovers(leg.To, departures, room, s.opts.MaxStopovers, s.locations, s.geo)
			if err != nil {
				return nil, err
			}
			stops = withRideAlong(planned, load.Selected.Shareable)
		}

		s.stats.LegsLoaded++
		f.edge = &pendingEdge{
			to:       leg.To,
			leg:      leg,
			load:     load,
			stops:    stops,
			checkout: checkoutLeg(leg, load.Remainder),
		}
		return s.newFrame(leg.To, f.hops-1, next, true, badLegs), nil
	}

	if !f.allowLocal || f.badLegs == 0 {
		return nil, nil
	}

	if !f.nearbyLoaded {
		nearby, err := s.NearbyOf(f.origin)
		if err != nil {
			return nil, err
		}
		f.nearby, f.nearbyLoaded = nearby, true
	}

	for f.nearbyIdx < len(f.nearby) {
		n := f.nearby[f.nearbyIdx]
		f.nearbyIdx++

		if err := s.visitEdge(ctx); err != nil {
			return nil, err
		}
		if f.restricted && f.restrictTo != n.ID {
			continue
		}
		// Scheduled connections were already explored above.
		if _, ok := domain.FindDeparture(departures, n.ID); ok {
			continue
		}

		s.stats.FerryHops++
		f.edge = &pendingEdge{to: n.ID, ferry: true, miles: n.Miles}
		// Ferry hops keep the hop budget but spend a bad leg, and cannot be
		// chained without a scheduled leg in between.
		return s.newFrame(n.ID, f.hops, next, false, f.badLegs-1), nil
	}

	return nil, nil
}

// complete folds the results of f's pending edge into f.out.
func (s *RouteSearch) complete(f *frame, sub []domain.RouteCandidate) error {
	e := f.edge
	f.edge = nil

	if e.ferry {
		for _, r := range sub {
			f.out = append(f.out, domain.RouteCandidate{
				Path:     append([]string{f.origin}, r.Path...),
				Loads:    append([]domain.Cargo{{}}, r.Loads...),
				Pay:      r.Pay,
				Distance: e.miles + r.Distance,
			})
		}
		return nil
	}

	if err := e.checkout.release(); err != nil {
		return err
	}

	// Stopping at the destination is always a candidate.
	sub = append(sub, domain.RouteCandidate{Path: []string{e.to}})

	for _, r := range sub {
		for _, st := range e.stops {
			remaining := e.leg.Distance
			if len(st.Stops) > 0 {
				miles, err := s.miles(st.Stops[len(st.Stops)-1], e.to)
				if err != nil {
					return err
				}
				remaining = miles
			}

			path := make([]string, 0, 1+len(st.Stops)+len(r.Path))
			path = append(path, f.origin)
			path = append(path, st.Stops...)
			path = append(path, r.Path...)

			loads := make([]domain.Cargo, 0, len(st.Loads)+1+len(r.Loads))
			loads = append(loads, st.Loads...)
			loads = append(loads, e.load.Selected)
			loads = append(loads, r.Loads...)

			f.out = append(f.out, domain.RouteCandidate{
				Path:     path,
				Loads:    loads,
				Pay:      e.load.Pay + st.Pay + r.Pay,
				Distance: st.Distance + remaining + r.Distance,
			})
		}
	}
	return nil
}

func (s *RouteSearch) visitEdge(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.stats.EdgesVisited++
	if s.onEdge != nil {
		s.onEdge()
	}
	return nil
}

// NearbyOf returns the ferry candidates around origin, computing and caching
// them on first use.
func (s *RouteSearch) NearbyOf(origin string) ([]domain.Nearby, error) {
	if n, ok := s.proximity.Get(origin); ok {
		return n, nil
	}

	n, err := FindNearby(origin, s.locations, s.geo, s.opts.NearbyMiles)
	if err != nil {
		return nil, err
	}
	s.proximity.Put(origin, n)
	return n, nil
}

func (s *RouteSearch) miles(from, to string) (float64, error) {
	a, ok := s.locations.Coordinates(from)
	if !ok {
		return 0, fmt.Errorf("%w: missing coordinates for %q", domain.ErrInvalidInput, from)
	}
	b, ok := s.locations.Coordinates(to)
	if !ok {
		return 0, fmt.Errorf("%w: missing coordinates for %q", domain.ErrInvalidInput, to)
	}
	return roundedMiles(s.geo, a, b), nil
}

// withRideAlong adds the primary leg's Shareable load to every stopover leg:
// cargo bound for the primary destination is on board from the origin.
func withRideAlong(stops []domain.Stopover, primary []domain.CargoItem) []domain.Stopover {
	out := make([]domain.Stopover, len(stops))
	for i, st := range stops {
		loads := make([]domain.Cargo, len(st.Loads))
		for k, l := range st.Loads {
			loads[k] = domain.Cargo{Shareable: append(slices.Clip(l.Shareable), primary...)}
		}
		st.Loads = loads
		out[i] = st
	}
	return out
}
