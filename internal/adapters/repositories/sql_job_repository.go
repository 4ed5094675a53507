package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cargo-route-service/internal/domain"
	"cargo-route-service/internal/platform/obs"
)

// SQL-backed implementation of the LocationRepository and JobRepository
// ports. The queries take no parameters and run unchanged on SQLite and
// Postgres.
type SQLJobRepository struct{ DB *sql.DB }

func NewSQLJobRepository(db *sql.DB) *SQLJobRepository {
	return &SQLJobRepository{DB: db}
}

// Return all locations stored in the database, ordered by id.
func (s *SQLJobRepository) ListLocations(ctx context.Context) (_ []domain.Location, err error) {
	defer obs.Time(ctx, "repo.ListLocations")(&err)

	if s.DB == nil {
		return nil, errors.New("sql job repository: DB is nil")
	}

	query := `
	SELECT
		location_id,
		lat,
		lon
	FROM locations
	ORDER BY location_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list locations: query locations table: %w", err)
	}
	defer rows.Close()

	locations := make([]domain.Location, 0, 64)
	for rows.Next() {
		var id string
		var lat, lon float64
		if err := rows.Scan(&id, &lat, &lon); err != nil {
			return nil, fmt.Errorf("list locations: scan row: %w", err)
		}
		locations = append(locations, domain.Location{ID: id, Coordinates: domain.Coordinates{Lat: lat, Lon: lon}})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list locations: row iteration: %w", err)
	}

	return locations, nil
}

// Return the job graph with departures in their stored order.
func (s *SQLJobRepository) LoadJobGraph(ctx context.Context) (_ domain.JobGraph, err error) {
	defer obs.Time(ctx, "repo.LoadJobGraph")(&err)

	if s.DB == nil {
		return nil, errors.New("sql job repository: DB is nil")
	}

	legsQuery := `
	SELECT
		from_id,
		to_id,
		distance_miles
	FROM legs
	ORDER BY from_id, seq;
	`
	rows, err := s.DB.QueryContext(ctx, legsQuery)
	if err != nil {
		return nil, fmt.Errorf("load job graph: query legs table: %w", err)
	}
	defer rows.Close()

	graph := make(domain.JobGraph)
	for rows.Next() {
		var l domain.Leg
		if err := rows.Scan(&l.From, &l.To, &l.Distance); err != nil {
			return nil, fmt.Errorf("load job graph: scan leg: %w", err)
		}
		graph.Add(l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load job graph: leg iteration: %w", err)
	}

	itemsQuery := `
	SELECT
		from_id,
		to_id,
		class,
		passengers,
		weight_kg,
		pay
	FROM cargo_items
	ORDER BY from_id, to_id, class, seq;
	`
	itemRows, err := s.DB.QueryContext(ctx, itemsQuery)
	if err != nil {
		return nil, fmt.Errorf("load job graph: query cargo_items table: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var from, to, class string
		var it domain.CargoItem
		if err := itemRows.Scan(&from, &to, &class, &it.Passengers, &it.WeightKg, &it.Pay); err != nil {
			return nil, fmt.Errorf("load job graph: scan cargo item: %w", err)
		}

		leg, ok := graph.Find(from, to)
		if !ok {
			return nil, fmt.Errorf("load job graph: cargo item for unknown leg %s->%s", from, to)
		}
		switch class {
		case classShareable:
			leg.Cargo.Shareable = append(leg.Cargo.Shareable, it)
		case classExclusive:
			leg.Cargo.Exclusive = append(leg.Cargo.Exclusive, it)
		default:
			return nil, fmt.Errorf("load job graph: leg %s->%s: unknown cargo class %q", from, to, class)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("load job graph: cargo iteration: %w", err)
	}

	return graph, nil
}
