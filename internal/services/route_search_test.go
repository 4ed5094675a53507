package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"cargo-route-service/internal/adapters/geodesic"
	"cargo-route-service/internal/domain"
)

func searchOptions() domain.SearchOptions {
	return domain.SearchOptions{
		MaxPassengers: 4,
		MaxWeightKg:   500,
		MaxHops:       3,
		MaxStopovers:  3,
		MaxBadLegs:    0,
		MinPaxLoad:    1,
		MinKgLoad:     50,
		NearbyMiles:   20,
	}
}

func shareable(items ...domain.CargoItem) domain.Cargo {
	return domain.Cargo{Shareable: items}
}

func paths(cands []domain.RouteCandidate) []string {
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		out = append(out, strings.Join(c.Path, ","))
	}
	slices.Sort(out)
	return out
}

func findPath(t *testing.T, cands []domain.RouteCandidate, path string) domain.RouteCandidate {
	t.Helper()
	for _, c := range cands {
		if strings.Join(c.Path, ",") == path {
			return c
		}
	}
	t.Fatalf("no candidate %s among %v", path, paths(cands))
	return domain.RouteCandidate{}
}

func snapshotGraph(g domain.JobGraph) map[string]domain.Cargo {
	out := make(map[string]domain.Cargo)
	for _, l := range g.Legs() {
		out[l.From+">"+l.To] = l.Cargo.Clone()
	}
	return out
}

func assertGraphRestored(t *testing.T, g domain.JobGraph, before map[string]domain.Cargo) {
	t.Helper()
	for _, l := range g.Legs() {
		if !l.Cargo.Equal(before[l.From+">"+l.To]) {
			t.Fatalf("cargo of %s->%s not restored: %+v", l.From, l.To, l.Cargo)
		}
	}
}

func runSearch(t *testing.T, g domain.JobGraph, locs []domain.Location, opts domain.SearchOptions, origin string, options ...SearchOption) ([]domain.RouteCandidate, *RouteSearch) {
	t.Helper()
	s := NewRouteSearch(g, opts, domain.NewLocationSet(locs), geodesic.NewPlanar(), nil, options...)
	got, err := s.Search(context.Background(), origin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return got, s
}

func TestSearchDirectLeg(t *testing.T) {
	locs := []domain.Location{loc("A", 0, 0), loc("B", 0, 100)}

	t.Run("paid", func(t *testing.T) {
		g := domain.NewJobGraph([]domain.Leg{{From: "A", To: "B", Distance: 100, Cargo: shareable(item(1, 10, 50))}})

		got, _ := runSearch(t, g, locs, searchOptions(), "A")

		if len(got) != 1 {
			t.Fatalf("expected 1 candidate, got %v", paths(got))
		}
		c := got[0]
		if strings.Join(c.Path, ",") != "A,B" || c.Pay != 50 || c.Distance != 100 {
			t.Fatalf("candidate = %+v", c)
		}
		if len(c.Loads) != 1 || c.Loads[0].Shareable[0].Pay != 50 {
			t.Fatalf("loads = %+v", c.Loads)
		}
	})

	t.Run("unpaid", func(t *testing.T) {
		g := domain.NewJobGraph([]domain.Leg{{From: "A", To: "B", Distance: 100, Cargo: shareable(item(1, 10, 0))}})

		got, _ := runSearch(t, g, locs, searchOptions(), "A")

		if len(got) != 0 {
			t.Fatalf("expected no candidates, got %v", paths(got))
		}
	})
}

func TestSearchStopoverIncreasesPay(t *testing.T) {
	locs := []domain.Location{loc("A", 0, 0), loc("B", 0, 100), loc("C", 0, 60)}
	g := domain.NewJobGraph([]domain.Leg{
		{From: "A", To: "B", Distance: 100, Cargo: shareable(item(1, 10, 50))},
		{From: "A", To: "C", Distance: 60, Cargo: shareable(item(1, 10, 40))},
	})
	before := snapshotGraph(g)

	opts := searchOptions()
	opts.MaxHops = 1
	opts.MinKgLoad = 0
	got, _ := runSearch(t, g, locs, opts, "A")

	if want := []string{"A,B", "A,C", "A,C,B"}; !slices.Equal(paths(got), want) {
		t.Fatalf("paths = %v, want %v", paths(got), want)
	}

	direct := findPath(t, got, "A,B")
	via := findPath(t, got, "A,C,B")
	if via.Pay <= direct.Pay || via.Pay != 90 || via.Distance != 100 {
		t.Fatalf("stopover route = %+v, direct = %+v", via, direct)
	}

	// The primary load rides along on the stopover leg.
	if len(via.Loads) != 2 || len(via.Loads[0].Shareable) != 2 || len(via.Loads[1].Shareable) != 1 {
		t.Fatalf("loads = %+v", via.Loads)
	}

	assertGraphRestored(t, g, before)
}

func TestSearchLoopRule(t *testing.T) {
	locs := []domain.Location{loc("A", 0, 0), loc("B", 0, 100), loc("C", 0, -100)}
	g := domain.NewJobGraph([]domain.Leg{
		{From: "A", To: "B", Distance: 100, Cargo: shareable(item(4, 0, 50), item(4, 0, 20))},
		{From: "A", To: "C", Distance: 100, Cargo: shareable(item(1, 0, 10))},
		{From: "B", To: "A", Distance: 100, Cargo: shareable(item(1, 0, 30))},
	})
	before := snapshotGraph(g)

	opts := searchOptions()
	opts.MinKgLoad = 0
	edges := 0
	got, s := runSearch(t, g, locs, opts, "A", WithProgress(func() { edges++ }))

	want := []string{"A,B", "A,B,A", "A,B,A,B", "A,C"}
	if !slices.Equal(paths(got), want) {
		t.Fatalf("paths = %v, want %v", paths(got), want)
	}

	// The second A->B only sees the item the first one left behind.
	if c := findPath(t, got, "A,B,A,B"); c.Pay != 100 || c.Distance != 300 {
		t.Fatalf("A,B,A,B = %+v", c)
	}

	if edges != 5 || s.Stats().EdgesVisited != 5 {
		t.Fatalf("edges = %d (stats %d), want 5", edges, s.Stats().EdgesVisited)
	}

	assertGraphRestored(t, g, before)
}

func TestSearchFerryHops(t *testing.T) {
	locs := []domain.Location{loc("A", 0, 0), loc("F", 0, 10), loc("G", 0, 110)}
	legs := []domain.Leg{{From: "F", To: "G", Distance: 100, Cargo: shareable(item(1, 0, 60))}}

	opts := searchOptions()
	opts.MaxHops = 1
	opts.MaxBadLegs = 1

	got, s := runSearch(t, domain.NewJobGraph(legs), locs, opts, "A")

	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %v", paths(got))
	}
	c := got[0]
	// A ferry keeps the hop budget, so one hop still reaches G.
	if strings.Join(c.Path, ",") != "A,F,G" || c.Pay != 60 || c.Distance != 110 {
		t.Fatalf("candidate = %+v", c)
	}
	if len(c.Loads) != 2 || !c.Loads[0].IsEmpty() {
		t.Fatalf("ferry hop should carry nothing: %+v", c.Loads)
	}
	if s.Stats().FerryHops != 1 {
		t.Fatalf("ferry hops = %d", s.Stats().FerryHops)
	}

	// Without a bad leg to spend there is no ferry.
	opts.MaxBadLegs = 0
	got, _ = runSearch(t, domain.NewJobGraph(legs), locs, opts, "A")
	if len(got) != 0 {
		t.Fatalf("expected no candidates without bad-leg budget, got %v", paths(got))
	}
}

func TestSearchStopoverGate(t *testing.T) {
	locs := []domain.Location{loc("A", 0, 0), loc("B", 0, 100), loc("C", 0, 60)}
	corridor := domain.Leg{From: "A", To: "C", Distance: 60, Cargo: shareable(item(1, 10, 40))}

	tests := []struct {
		name    string
		legs    []domain.Leg
		maxHops int
		present []string
		absent  string
	}{
		{
			name:    "shareable load",
			legs:    []domain.Leg{{From: "A", To: "B", Distance: 100, Cargo: shareable(item(1, 10, 50))}, corridor},
			maxHops: 1,
			present: []string{"A,B", "A,C,B"},
		},
		{
			name: "exclusive load",
			legs: []domain.Leg{
				{From: "A", To: "B", Distance: 100, Cargo: domain.Cargo{
					Shareable: []domain.CargoItem{item(1, 10, 50)},
					Exclusive: []domain.CargoItem{item(1, 10, 100)},
				}},
				corridor,
			},
			maxHops: 1,
			present: []string{"A,B"},
			absent:  "A,C,B",
		},
		{
			name:    "passengers full",
			legs:    []domain.Leg{{From: "A", To: "B", Distance: 100, Cargo: shareable(item(4, 10, 50))}, corridor},
			maxHops: 1,
			present: []string{"A,B"},
			absent:  "A,C,B",
		},
		{
			name:    "weight full",
			legs:    []domain.Leg{{From: "A", To: "B", Distance: 100, Cargo: shareable(item(1, 500, 50))}, corridor},
			maxHops: 1,
			present: []string{"A,B"},
			absent:  "A,C,B",
		},
		{
			name: "revisited origin",
			legs: []domain.Leg{
				{From: "A", To: "B", Distance: 100, Cargo: shareable(item(1, 300, 50), item(1, 300, 20))},
				corridor,
				{From: "B", To: "A", Distance: 100, Cargo: shareable(item(1, 10, 30))},
			},
			maxHops: 3,
			present: []string{"A,C,B", "A,B,A,B"},
			absent:  "A,B,A,C,B",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := domain.NewJobGraph(tt.legs)
			before := snapshotGraph(g)

			opts := searchOptions()
			opts.MaxHops = tt.maxHops
			opts.MinKgLoad = 0
			got, _ := runSearch(t, g, locs, opts, "A")

			for _, p := range tt.present {
				findPath(t, got, p)
			}
			if tt.absent != "" && slices.Contains(paths(got), tt.absent) {
				t.Fatalf("unexpected stopover route %s among %v", tt.absent, paths(got))
			}
			assertGraphRestored(t, g, before)
		})
	}
}

func TestSearchNoConsecutiveFerryHops(t *testing.T) {
	opts := searchOptions()
	opts.MaxBadLegs = 2
	opts.MinKgLoad = 0

	t.Run("back to back", func(t *testing.T) {
		// F is near A and F2 is near F, but F2 is out of range of A.
		locs := []domain.Location{loc("A", 0, 0), loc("F", 0, 10), loc("F2", 0, 20), loc("G", 0, 120)}
		legs := []domain.Leg{{From: "F2", To: "G", Distance: 100, Cargo: shareable(item(1, 0, 60))}}

		opts := opts
		opts.MaxHops = 1
		got, s := runSearch(t, domain.NewJobGraph(legs), locs, opts, "A")

		if len(got) != 0 {
			t.Fatalf("expected no candidates, got %v", paths(got))
		}
		if s.Stats().FerryHops != 1 {
			t.Fatalf("ferry hops = %d, want 1", s.Stats().FerryHops)
		}
	})

	t.Run("scheduled leg in between", func(t *testing.T) {
		locs := []domain.Location{
			loc("A", 0, 0), loc("F", 0, 10), loc("H", 0, 110), loc("H2", 0, 120), loc("G", 0, 220),
		}
		legs := []domain.Leg{
			{From: "F", To: "H", Distance: 100, Cargo: shareable(item(1, 0, 50))},
			{From: "H2", To: "G", Distance: 100, Cargo: shareable(item(1, 0, 60))},
		}

		opts := opts
		opts.MaxHops = 2
		got, s := runSearch(t, domain.NewJobGraph(legs), locs, opts, "A")

		if want := []string{"A,F,H", "A,F,H,H2,G"}; !slices.Equal(paths(got), want) {
			t.Fatalf("paths = %v, want %v", paths(got), want)
		}
		c := findPath(t, got, "A,F,H,H2,G")
		if c.Pay != 110 || c.Distance != 220 {
			t.Fatalf("candidate = %+v", c)
		}
		if !c.Loads[0].IsEmpty() || !c.Loads[2].IsEmpty() {
			t.Fatalf("ferry hops should carry nothing: %+v", c.Loads)
		}
		if s.Stats().FerryHops != 2 {
			t.Fatalf("ferry hops = %d, want 2", s.Stats().FerryHops)
		}
	})
}

func randomCargo(r *rand.Rand) domain.Cargo {
	var c domain.Cargo
	for range r.IntN(4) {
		c.Shareable = append(c.Shareable, item(r.IntN(3), float64(r.IntN(6)*40), float64(r.IntN(50))))
	}
	if r.IntN(4) == 0 {
		c.Exclusive = append(c.Exclusive, item(r.IntN(3), float64(r.IntN(6)*40), float64(r.IntN(120))))
	}
	return c
}

func randomNetwork(r *rand.Rand) ([]domain.Location, domain.JobGraph) {
	n := 3 + r.IntN(4)
	locs := make([]domain.Location, n)
	for i := range locs {
		locs[i] = loc(fmt.Sprintf("L%d", i), float64(r.IntN(40)), float64(r.IntN(40)))
	}

	var legs []domain.Leg
	for range r.IntN(3 * n) {
		from, to := r.IntN(n), r.IntN(n)
		if from == to {
			continue
		}
		legs = append(legs, domain.Leg{
			From:     locs[from].ID,
			To:       locs[to].ID,
			Distance: float64(10 + r.IntN(60)),
			Cargo:    randomCargo(r),
		})
	}
	return locs, domain.NewJobGraph(legs)
}

func cargoTotals(c domain.Cargo) (pax int, kg, pay float64) {
	for _, it := range slices.Concat(c.Shareable, c.Exclusive) {
		pax += it.Passengers
		kg += it.WeightKg
		pay += it.Pay
	}
	return pax, kg, pay
}

func TestSearchBudgetsOnRandomNetworks(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))

	for i := 0; i < 300; i++ {
		locs, g := randomNetwork(r)
		before := snapshotGraph(g)

		opts := searchOptions()
		opts.MaxHops = 1 + r.IntN(3)
		opts.MaxBadLegs = r.IntN(3)
		opts.MaxStopovers = r.IntN(3)
		opts.MinPaxLoad = 1 + r.IntN(2)
		opts.MinKgLoad = float64(r.IntN(3) * 50)
		opts.NearbyMiles = float64(5 + r.IntN(20))

		got, _ := runSearch(t, g, locs, opts, "L0")
		assertGraphRestored(t, g, before)

		for _, c := range got {
			if len(c.Path) < 2 || c.Path[0] != "L0" || len(c.Loads) != len(c.Path)-1 {
				t.Fatalf("network %d: malformed candidate %+v", i, c)
			}

			loaded, spent := 0, 0
			var pay float64
			for _, l := range c.Loads {
				if l.IsEmpty() {
					spent++
					continue
				}
				loaded++
				pax, kg, p := cargoTotals(l)
				if pax < opts.MinPaxLoad && kg < opts.MinKgLoad {
					spent++
				}
				pay += p
			}

			if loaded > opts.MaxHops*(1+opts.MaxStopovers) {
				t.Fatalf("network %d: %d loaded legs with %+v: %+v", i, loaded, opts, c)
			}
			if opts.MaxStopovers > 0 {
				continue
			}
			// Without stopovers every loaded transition is a scheduled leg.
			if loaded > opts.MaxHops {
				t.Fatalf("network %d: %d loaded legs exceed %d hops: %+v", i, loaded, opts.MaxHops, c)
			}
			if spent > opts.MaxBadLegs {
				t.Fatalf("network %d: %d bad legs and ferries exceed %d: %+v", i, spent, opts.MaxBadLegs, c)
			}
			if pay != c.Pay {
				t.Fatalf("network %d: pay %v does not match loads %v: %+v", i, c.Pay, pay, c)
			}
		}
	}
}

func TestSearchBadLegBudget(t *testing.T) {
	locs := []domain.Location{loc("A", 0, 0), loc("B", 0, 100)}
	// Below both minimums: no passengers and 10 kg.
	legs := []domain.Leg{{From: "A", To: "B", Distance: 100, Cargo: shareable(item(0, 10, 20))}}

	opts := searchOptions()
	got, _ := runSearch(t, domain.NewJobGraph(legs), locs, opts, "A")
	if len(got) != 0 {
		t.Fatalf("bad leg taken without budget: %v", paths(got))
	}

	opts.MaxBadLegs = 1
	got, _ = runSearch(t, domain.NewJobGraph(legs), locs, opts, "A")
	if len(got) != 1 || got[0].Pay != 20 {
		t.Fatalf("expected the bad leg with budget 1, got %+v", got)
	}
}

func TestSearchZeroHopsReturnsNothing(t *testing.T) {
	locs := []domain.Location{loc("A", 0, 0), loc("B", 0, 100)}
	g := domain.NewJobGraph([]domain.Leg{{From: "A", To: "B", Distance: 100, Cargo: shareable(item(1, 10, 50))}})

	opts := searchOptions()
	opts.MaxHops = 0
	got, _ := runSearch(t, g, locs, opts, "A")
	if len(got) != 0 {
		t.Fatalf("expected no candidates, got %v", paths(got))
	}
}

func loopGraph() domain.JobGraph {
	return domain.NewJobGraph([]domain.Leg{
		{From: "A", To: "B", Distance: 100, Cargo: shareable(item(4, 0, 50), item(4, 0, 20))},
		{From: "A", To: "C", Distance: 100, Cargo: shareable(item(1, 0, 10))},
		{From: "B", To: "A", Distance: 100, Cargo: shareable(item(1, 0, 30))},
	})
}

func TestSearchCancellationRestoresCargo(t *testing.T) {
	locs := []domain.Location{loc("A", 0, 0), loc("B", 0, 100), loc("C", 0, -100)}
	g := loopGraph()
	before := snapshotGraph(g)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	edges := 0
	s := NewRouteSearch(g, searchOptions(), domain.NewLocationSet(locs), geodesic.NewPlanar(), nil,
		WithProgress(func() {
			edges++
			if edges == 2 {
				cancel()
			}
		}))

	_, err := s.Search(ctx, "A")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}

	assertGraphRestored(t, g, before)
}

func TestSearchDetectsCorruptedCargo(t *testing.T) {
	locs := []domain.Location{loc("A", 0, 0), loc("B", 0, 100), loc("C", 0, -100)}
	g := loopGraph()

	leg, _ := g.Find("A", "B")
	items := leg.Cargo.Shareable

	opts := searchOptions()
	opts.MinKgLoad = 0
	// Rewrite the checked-out manifest in place while its subtree runs.
	edges := 0
	s := NewRouteSearch(g, opts, domain.NewLocationSet(locs), geodesic.NewPlanar(), nil,
		WithProgress(func() {
			edges++
			if edges == 2 {
				items[1].Pay = 999
			}
		}))

	_, err := s.Search(context.Background(), "A")
	if !errors.Is(err, domain.ErrStateCorruption) {
		t.Fatalf("err = %v, want ErrStateCorruption", err)
	}
}
