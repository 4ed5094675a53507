package dto

type CargoItem struct {
	Passengers int     `json:"passengers"`
	WeightKg   float64 `json:"weight_kg"`
	Pay        float64 `json:"pay"`
}

type Cargo struct {
	Shareable []CargoItem `json:"shareable"`
	Exclusive []CargoItem `json:"exclusive"`
}

type Leg struct {
	From          string  `json:"from"`
	To            string  `json:"to"`
	DistanceMiles float64 `json:"distance_miles"`
	Cargo         Cargo   `json:"cargo"`
}

type Location struct {
	ID  string  `json:"id"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// SearchOptions overrides the server defaults field by field. Omitted fields
// keep the default.
type SearchOptions struct {
	MaxPassengers *int     `json:"max_passengers"`
	MaxWeightKg   *float64 `json:"max_weight_kg"`
	MaxHops       *int     `json:"max_hops"`
	MaxStopovers  *int     `json:"max_stopovers"`
	MaxBadLegs    *int     `json:"max_bad_legs"`
	MinPaxLoad    *int     `json:"min_pax_load"`
	MinKgLoad     *float64 `json:"min_kg_load"`
	NearbyMiles   *float64 `json:"nearby_miles"`
}

// SearchRequest is the invocation message. Jobs and locations are loaded
// from the server's network when omitted or null; an empty list is kept.
type SearchRequest struct {
	Origin    string         `json:"origin"`
	Jobs      []Leg          `json:"jobs"`
	Locations []Location     `json:"locations"`
	Options   *SearchOptions `json:"options"`
}

type RouteCandidate struct {
	Path          []string `json:"path"`
	Loads         []Cargo  `json:"loads"`
	Pay           float64  `json:"pay"`
	DistanceMiles float64  `json:"distance_miles"`
	PayPerMile    float64  `json:"pay_per_mile"`
}

// SearchEvent is one message of the WebSocket stream.
type SearchEvent struct {
	Status   string           `json:"status"`
	Progress float64          `json:"progress,omitempty"`
	Results  []RouteCandidate `json:"results,omitempty"`
	Error    string           `json:"error,omitempty"`
}

type SearchStats struct {
	EdgesVisited int `json:"edges_visited"`
	LegsLoaded   int `json:"legs_loaded"`
	FerryHops    int `json:"ferry_hops"`
	Candidates   int `json:"candidates"`
}

type SearchResponse struct {
	SearchID       string           `json:"search_id"`
	Status         string           `json:"status"`
	Results        []RouteCandidate `json:"results"`
	ProgressEvents int              `json:"progress_events"`
	ProgressStep   float64          `json:"progress_step"`
	Stats          SearchStats      `json:"stats"`
}
