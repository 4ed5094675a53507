package domain

// Leg is a scheduled transport opportunity between two locations.
// Distance is expressed in statute miles.
type Leg struct {
	From     string
	To       string
	Distance float64
	Cargo    Cargo
}

// JobGraph maps an origin id to its departures. The order of departures is
// the order in which the route search explores them.
//
// The search mutates Leg.Cargo in place while a subtree is explored, so a
// JobGraph must not be shared by concurrent searches; use Clone.
type JobGraph map[string][]*Leg

// NewJobGraph builds a graph from a flat list of legs, keeping their order.
// A later leg with the same endpoints replaces the earlier one in place.
func NewJobGraph(legs []Leg) JobGraph {
	g := make(JobGraph)
	for i := range legs {
		g.Add(legs[i])
	}
	return g
}

// Add inserts or replaces the leg from l.From to l.To.
func (g JobGraph) Add(l Leg) {
	leg := l
	for i, existing := range g[l.From] {
		if existing.To == l.To {
			g[l.From][i] = &leg
			return
		}
	}
	g[l.From] = append(g[l.From], &leg)
}

// Find returns the leg between two locations, if scheduled.
func (g JobGraph) Find(from, to string) (*Leg, bool) {
	return FindDeparture(g[from], to)
}

// FindDeparture returns the leg to a destination among one origin's departures.
func FindDeparture(departures []*Leg, to string) (*Leg, bool) {
	for _, l := range departures {
		if l.To == to {
			return l, true
		}
	}
	return nil, false
}

// Departures returns the legs leaving an origin.
func (g JobGraph) Departures(from string) []*Leg { return g[from] }

// Clone returns a deep copy, safe to hand to a search that mutates it.
func (g JobGraph) Clone() JobGraph {
	out := make(JobGraph, len(g))
	for from, legs := range g {
		cp := make([]*Leg, 0, len(legs))
		for _, l := range legs {
			leg := *l
			leg.Cargo = l.Cargo.Clone()
			cp = append(cp, &leg)
		}
		out[from] = cp
	}
	return out
}

// Legs flattens the graph. Origins are visited in map order.
func (g JobGraph) Legs() []*Leg {
	out := make([]*Leg, 0, len(g))
	for _, legs := range g {
		out = append(out, legs...)
	}
	return out
}
