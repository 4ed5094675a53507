package feed

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"cargo-route-service/internal/domain"
	"cargo-route-service/internal/ports"
)

// Document is the wire format of a job network: the one served by job feeds
// and accepted by the seed files of cmd/dbtool.
type Document struct {
	Locations []LocationDoc `json:"locations"`
	Jobs      []JobDoc      `json:"jobs"`
}

type LocationDoc struct {
	ID  string  `json:"id"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type JobDoc struct {
	From string `json:"from"`
	To   string `json:"to"`
	// Zero means "compute from coordinates".
	DistanceMiles float64  `json:"distance_miles"`
	Cargo         CargoDoc `json:"cargo"`
}

type CargoDoc struct {
	Shareable []ItemDoc `json:"shareable"`
	Exclusive []ItemDoc `json:"exclusive"`
}

type ItemDoc struct {
	Passengers int     `json:"passengers"`
	WeightKg   float64 `json:"weight_kg"`
	Pay        float64 `json:"pay"`
}

// ReadDocument decodes a network document.
func ReadDocument(r io.Reader) (Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("read document: parse json: %w", err)
	}
	return doc, nil
}

// DomainLocations converts the locations, rejecting empty ids.
func (d Document) DomainLocations() ([]domain.Location, error) {
	out := make([]domain.Location, 0, len(d.Locations))
	for i, l := range d.Locations {
		id := strings.TrimSpace(l.ID)
		if id == "" {
			return nil, fmt.Errorf("document: location at index %d: id cannot be empty", i+1)
		}
		out = append(out, domain.Location{ID: id, Coordinates: domain.Coordinates{Lat: l.Lat, Lon: l.Lon}})
	}
	return out, nil
}

// DomainLegs converts the jobs. Legs without a distance get the rounded
// great-circle distance between their endpoints.
func (d Document) DomainLegs(geo ports.Geodesic) ([]domain.Leg, error) {
	locations, err := d.DomainLocations()
	if err != nil {
		return nil, err
	}
	set := domain.NewLocationSet(locations)

	legs := make([]domain.Leg, 0, len(d.Jobs))
	for i, j := range d.Jobs {
		from, to := strings.TrimSpace(j.From), strings.TrimSpace(j.To)
		if from == "" || to == "" {
			return nil, fmt.Errorf("document: job at index %d: from and to cannot be empty", i+1)
		}

		distance := j.DistanceMiles
		if distance == 0 {
			a, okA := set.Coordinates(from)
			b, okB := set.Coordinates(to)
			if !okA || !okB {
				return nil, fmt.Errorf("document: job %s->%s: no distance and unknown coordinates", from, to)
			}
			distance = math.Round(geo.StatuteMiles(a, b))
		}

		legs = append(legs, domain.Leg{
			From:     from,
			To:       to,
			Distance: distance,
			Cargo: domain.Cargo{
				Shareable: items(j.Cargo.Shareable),
				Exclusive: items(j.Cargo.Exclusive),
			},
		})
	}
	return legs, nil
}

func items(docs []ItemDoc) []domain.CargoItem {
	if len(docs) == 0 {
		return nil
	}
	out := make([]domain.CargoItem, 0, len(docs))
	for _, it := range docs {
		out = append(out, domain.CargoItem{Passengers: it.Passengers, WeightKg: it.WeightKg, Pay: it.Pay})
	}
	return out
}
