package services

import (
	"fmt"
	"slices"

	"cargo-route-service/internal/domain"
	"cargo-route-service/internal/ports"
)

// CorridorRatio is the minimum primary/detour distance ratio for a leg to
// count as lying on the way to the primary destination.
const CorridorRatio = 0.70

type corridorLeg struct {
	leg    *domain.Leg
	detour float64
}

// PlanStopovers greedily inserts up to maxStops extra pickup stops on the way
// from the departures' origin to the primary destination `to`.
//
// A departure qualifies when it is not longer than the primary leg and the
// detour through it keeps at least CorridorRatio of the direct efficiency.
// Each iteration takes the qualifying stop with the best pay per detour mile,
// computed by the Shareable knapsack over the capacity still free. Stops are
// kept in descending order of their leg distance from origin.
//
// The result holds one snapshot per number of inserted stops, starting with
// the empty snapshot, so it is never empty.
func PlanStopovers(
	to string,
	departures []*domain.Leg,
	room domain.Capacity,
	maxStops int,
	locations *domain.LocationSet,
	geo ports.Geodesic,
) ([]domain.Stopover, error) {
	primary, ok := domain.FindDeparture(departures, to)
	if !ok {
		return nil, fmt.Errorf("plan stopovers: %w: no scheduled leg to %q", domain.ErrInvalidInput, to)
	}

	toCoord, ok := locations.Coordinates(to)
	if !ok {
		return nil, fmt.Errorf("plan stopovers: %w: missing coordinates for %q", domain.ErrInvalidInput, to)
	}

	corridor := make([]corridorLeg, 0, len(departures))
	for _, l := range departures {
		if l.To == to || l.Distance > primary.Distance {
			continue
		}

		c, ok := locations.Coordinates(l.To)
		if !ok {
			return nil, fmt.Errorf("plan stopovers: %w: missing coordinates for %q", domain.ErrInvalidInput, l.To)
		}

		detour := l.Distance + geo.StatuteMiles(c, toCoord)
		if detour <= 0 || primary.Distance/detour < CorridorRatio {
			continue
		}
		corridor = append(corridor, corridorLeg{leg: l, detour: detour})
	}

	snapshots := []domain.Stopover{{}}
	excluded := make(map[string]struct{}, maxStops)

	for i := 0; i < maxStops; i++ {
		var (
			best     *domain.Leg
			bestLoad domain.Load
			bestRate float64
		)

		// Greedy step: highest pay per detour mile wins, first one on ties.
		for _, c := range corridor {
			if _, ok := excluded[c.leg.To]; ok {
				continue
			}

			load := MaximizeShareable(c.leg.Cargo.Shareable, room.Passengers, room.WeightKg)
			if load.Pay <= 0 {
				continue
			}

			if rate := load.Pay / c.detour; rate > bestRate {
				best, bestLoad, bestRate = c.leg, load, rate
			}
		}

		if best == nil {
			break
		}

		prev := snapshots[len(snapshots)-1]

		pos := len(prev.Stops)
		for k, id := range prev.Stops {
			existing, _ := domain.FindDeparture(departures, id)
			if best.Distance >= existing.Distance {
				pos = k
				break
			}
		}

		stops := slices.Insert(slices.Clone(prev.Stops), pos, best.To)
		loads := slices.Insert(slices.Clone(prev.Loads), pos, domain.Cargo{Shareable: bestLoad.Selected.Shareable})

		distance, err := stopsDistance(stops, departures, locations, geo)
		if err != nil {
			return nil, fmt.Errorf("plan stopovers: %w", err)
		}

		snapshots = append(snapshots, domain.Stopover{
			Stops:    stops,
			Loads:    loads,
			Pay:      prev.Pay + bestLoad.Pay,
			Distance: distance,
		})

		excluded[best.To] = struct{}{}
		room, err = room.Minus(bestLoad.Passengers, bestLoad.WeightKg)
		if err != nil {
			return nil, fmt.Errorf("plan stopovers: %w", err)
		}
	}

	return snapshots, nil
}

// stopsDistance is the first stop's leg distance plus the rounded great-circle
// miles between consecutive stops.
func stopsDistance(
	stops []string,
	departures []*domain.Leg,
	locations *domain.LocationSet,
	geo ports.Geodesic,
) (float64, error) {
	first, ok := domain.FindDeparture(departures, stops[0])
	if !ok {
		return 0, fmt.Errorf("%w: no scheduled leg to stop %q", domain.ErrInvalidInput, stops[0])
	}

	total := first.Distance
	for k := 1; k < len(stops); k++ {
		a, okA := locations.Coordinates(stops[k-1])
		b, okB := locations.Coordinates(stops[k])
		if !okA || !okB {
			return 0, fmt.Errorf("%w: missing coordinates between %q and %q", domain.ErrInvalidInput, stops[k-1], stops[k])
		}
		total += roundedMiles(geo, a, b)
	}
	return total, nil
}
