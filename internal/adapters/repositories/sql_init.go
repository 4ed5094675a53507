package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"

	"cargo-route-service/internal/adapters/feed"
	"cargo-route-service/internal/domain"
	"cargo-route-service/internal/platform/db"
	"cargo-route-service/internal/ports"
)

const (
	classShareable = "shareable"
	classExclusive = "exclusive"
)

// Initialize the database schema. The statements are valid on both SQLite
// and Postgres.
func InitSchema(ctx context.Context, conn *sql.DB) error {
	if conn == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createLocationsQuery := `
	CREATE TABLE IF NOT EXISTS locations (
		location_id TEXT PRIMARY KEY,
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL
	);
	`

	createLegsQuery := `
	CREATE TABLE IF NOT EXISTS legs (
		from_id TEXT NOT NULL,
		to_id TEXT NOT NULL,
		distance_miles DOUBLE PRECISION NOT NULL,
		seq INTEGER NOT NULL,
		PRIMARY KEY (from_id, to_id)
	);
	`

	createCargoItemsQuery := `
	CREATE TABLE IF NOT EXISTS cargo_items (
		from_id TEXT NOT NULL,
		to_id TEXT NOT NULL,
		class TEXT NOT NULL,
		seq INTEGER NOT NULL,
		passengers INTEGER NOT NULL,
		weight_kg DOUBLE PRECISION NOT NULL,
		pay DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (from_id, to_id, class, seq)
	);
	`

	createProximityCacheQuery := `
	CREATE TABLE IF NOT EXISTS proximity_cache (
		cache_key TEXT NOT NULL,
		origin TEXT NOT NULL,
		nearby_json TEXT NOT NULL,
		PRIMARY KEY (cache_key, origin)
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_legs_from_seq
	ON legs(from_id, seq);
	`

	statements := []string{
		createLocationsQuery,
		createLegsQuery,
		createCargoItemsQuery,
		createProximityCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// Populate the database with a network document read from a JSON file.
func SeedFromJSON(ctx context.Context, conn *sql.DB, dialect db.Dialect, jsonPath string, geo ports.Geodesic) error {
	f, err := os.Open(jsonPath)
	if err != nil {
		return fmt.Errorf("seed network: open %q: %w", jsonPath, err)
	}
	defer f.Close()

	doc, err := feed.ReadDocument(f)
	if err != nil {
		return fmt.Errorf("seed network: %w", err)
	}

	return SeedDocument(ctx, conn, dialect, doc, geo)
}

// SeedDocument replaces the stored job network with the document's content.
// Locations are upserted; legs and cargo are replaced wholesale.
func SeedDocument(ctx context.Context, conn *sql.DB, dialect db.Dialect, doc feed.Document, geo ports.Geodesic) error {
	locations, err := doc.DomainLocations()
	if err != nil {
		return fmt.Errorf("seed network: %w", err)
	}
	legs, err := doc.DomainLegs(geo)
	if err != nil {
		return fmt.Errorf("seed network: %w", err)
	}

	return SeedNetwork(ctx, conn, dialect, locations, legs)
}

func SeedNetwork(
	ctx context.Context,
	conn *sql.DB,
	dialect db.Dialect,
	locations []domain.Location,
	legs []domain.Leg,
) error {
	for _, l := range legs {
		for _, it := range l.Cargo.Shareable {
			if err := domain.ValidateItem(it); err != nil {
				return fmt.Errorf("seed network: leg %s->%s: %w", l.From, l.To, err)
			}
		}
		for _, it := range l.Cargo.Exclusive {
			if err := domain.ValidateItem(it); err != nil {
				return fmt.Errorf("seed network: leg %s->%s: %w", l.From, l.To, err)
			}
		}
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed network: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, q := range []string{`DELETE FROM cargo_items;`, `DELETE FROM legs;`} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("seed network: clear: %w", err)
		}
	}

	locStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO locations (location_id, lat, lon)
	VALUES (`+dialect.Binds(1, 3)+`)
	ON CONFLICT (location_id) DO UPDATE
	SET lat = EXCLUDED.lat,
		lon = EXCLUDED.lon;
	`)
	if err != nil {
		return fmt.Errorf("seed network: prepare locations: %w", err)
	}
	defer locStmt.Close()

	for _, l := range locations {
		if _, err := locStmt.ExecContext(ctx, l.ID, l.Coordinates.Lat, l.Coordinates.Lon); err != nil {
			return fmt.Errorf("seed network: insert location %q: %w", l.ID, err)
		}
	}

	legStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO legs (from_id, to_id, distance_miles, seq)
	VALUES (`+dialect.Binds(1, 4)+`)
	ON CONFLICT (from_id, to_id) DO UPDATE
	SET distance_miles = EXCLUDED.distance_miles;
	`)
	if err != nil {
		return fmt.Errorf("seed network: prepare legs: %w", err)
	}
	defer legStmt.Close()

	itemStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO cargo_items (from_id, to_id, class, seq, passengers, weight_kg, pay)
	VALUES (`+dialect.Binds(1, 7)+`);
	`)
	if err != nil {
		return fmt.Errorf("seed network: prepare cargo: %w", err)
	}
	defer itemStmt.Close()

	// Duplicate legs collapse the same way the search sees them: the last
	// one wins but keeps the position of the first.
	graph := domain.NewJobGraph(legs)
	seen := make(map[[2]string]struct{}, len(legs))
	seq, empty := 0, 0
	for _, l := range legs {
		key := [2]string{l.From, l.To}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		leg, _ := graph.Find(l.From, l.To)

		seq++
		if leg.Cargo.IsEmpty() {
			empty++
		}
		if _, err := legStmt.ExecContext(ctx, leg.From, leg.To, leg.Distance, seq); err != nil {
			return fmt.Errorf("seed network: insert leg %s->%s: %w", leg.From, leg.To, err)
		}
		if err := insertItems(ctx, itemStmt, leg.From, leg.To, classShareable, leg.Cargo.Shareable); err != nil {
			return err
		}
		if err := insertItems(ctx, itemStmt, leg.From, leg.To, classExclusive, leg.Cargo.Exclusive); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed network: commit tx: %w", err)
	}

	log.Printf("op=seed.Network db=%s locations=%d legs=%d empty_legs=%d", dialect, len(locations), seq, empty)
	return nil
}

func insertItems(ctx context.Context, stmt *sql.Stmt, from, to, class string, items []domain.CargoItem) error {
	for i, it := range items {
		if _, err := stmt.ExecContext(ctx, from, to, class, i, it.Passengers, it.WeightKg, it.Pay); err != nil {
			return fmt.Errorf("seed network: insert %s cargo %s->%s #%d: %w", class, from, to, i, err)
		}
	}
	return nil
}
