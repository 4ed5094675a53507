package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cargo-route-service/internal/domain"
	"cargo-route-service/internal/platform/db"
	"cargo-route-service/internal/platform/obs"
)

// SQLProximityStore is a SQL-backed store of proximity caches. Each origin
// is one row holding its neighbors as JSON, so origins without neighbors
// survive a round trip.
type SQLProximityStore struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLProximityStore(conn *sql.DB, dialect db.Dialect) *SQLProximityStore {
	return &SQLProximityStore{DB: conn, Dialect: dialect}
}

type nearbyRecord struct {
	ID    string  `json:"id"`
	Miles float64 `json:"miles"`
}

func encodeNearby(n []domain.Nearby) ([]byte, error) {
	recs := make([]nearbyRecord, 0, len(n))
	for _, x := range n {
		recs = append(recs, nearbyRecord{ID: x.ID, Miles: x.Miles})
	}
	return json.Marshal(recs)
}

func decodeNearby(b []byte) ([]domain.Nearby, error) {
	var recs []nearbyRecord
	if err := json.Unmarshal(b, &recs); err != nil {
		return nil, err
	}
	out := make([]domain.Nearby, 0, len(recs))
	for _, r := range recs {
		out = append(out, domain.Nearby{ID: r.ID, Miles: r.Miles})
	}
	return out, nil
}

// Fetch every cached origin for a key.
func (s *SQLProximityStore) LoadProximity(ctx context.Context, key string) (_ map[string][]domain.Nearby, err error) {
	defer obs.Time(ctx, "proximity.sql.Load")(&err)

	if s.DB == nil {
		return nil, errors.New("proximity store: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return nil, errors.New("get proximity cache: key must not be empty")
	}

	q := `
	SELECT origin, nearby_json
	FROM proximity_cache
	WHERE cache_key = ` + s.Dialect.Bind(1) + `;
	`

	rows, err := s.DB.QueryContext(ctx, q, key)
	if err != nil {
		return nil, fmt.Errorf("get proximity cache: query proximity_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.Nearby)
	for rows.Next() {
		var origin, raw string
		if err := rows.Scan(&origin, &raw); err != nil {
			return nil, fmt.Errorf("get proximity cache: scan rows: %w", err)
		}
		n, err := decodeNearby([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("get proximity cache: decode origin %q: %w", origin, err)
		}
		out[origin] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get proximity cache: row iteration: %w", err)
	}

	return out, nil
}

// Store cached origins for a key.
func (s *SQLProximityStore) SaveProximity(
	ctx context.Context,
	key string,
	entries map[string][]domain.Nearby,
) (err error) {
	defer obs.Time(ctx, "proximity.sql.Save")(&err)

	if s.DB == nil {
		return errors.New("proximity store: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return errors.New("insert proximity cache: key must not be empty")
	}

	if len(entries) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert proximity cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO proximity_cache (cache_key, origin, nearby_json)
	VALUES (`+s.Dialect.Binds(1, 3)+`)
	ON CONFLICT (cache_key, origin) DO UPDATE
	SET nearby_json = EXCLUDED.nearby_json;
	`)
	if err != nil {
		return fmt.Errorf("insert proximity cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for origin, n := range entries {
		if strings.TrimSpace(origin) == "" {
			return fmt.Errorf("insert proximity cache: empty origin key")
		}

		raw, err := encodeNearby(n)
		if err != nil {
			return fmt.Errorf("insert proximity cache origin=%q: encode: %w", origin, err)
		}
		if _, err := stmt.ExecContext(ctx, key, origin, string(raw)); err != nil {
			return fmt.Errorf("insert proximity cache origin=%q: %w", origin, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert proximity cache commit: %w", err)
	}

	return nil
}
