package domain

// Stopover is one snapshot of the stopover planner: the extra pickup stops
// inserted before the primary destination, the Shareable load picked up at
// each, and the aggregate pay and distance up to the last stop.
type Stopover struct {
	Stops    []string
	Loads    []Cargo
	Pay      float64
	Distance float64
}

// RouteCandidate is a complete or partial route produced by the search.
//
// Path lists the visited locations in order. Loads holds the cargo carried
// on each transition, so len(Loads) == len(Path)-1 for a complete route.
// A ferry hop carries an empty Cargo.
type RouteCandidate struct {
	Path     []string
	Loads    []Cargo
	Pay      float64
	Distance float64
}

// Hops counts the transitions of the route.
func (r RouteCandidate) Hops() int {
	if len(r.Path) == 0 {
		return 0
	}
	return len(r.Path) - 1
}

// PayPerMile is the ranking density used by callers; zero-distance routes
// rank by raw pay.
func (r RouteCandidate) PayPerMile() float64 {
	if r.Distance <= 0 {
		return r.Pay
	}
	return r.Pay / r.Distance
}
