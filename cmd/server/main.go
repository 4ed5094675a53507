package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"cargo-route-service/internal/adapters/cache"
	"cargo-route-service/internal/adapters/feed"
	"cargo-route-service/internal/adapters/geodesic"
	"cargo-route-service/internal/adapters/repositories"
	"cargo-route-service/internal/api"
	"cargo-route-service/internal/api/handlers"
	"cargo-route-service/internal/config"
	"cargo-route-service/internal/platform/db"
	"cargo-route-service/internal/ports"
	"cargo-route-service/internal/services"

	"golang.org/x/time/rate"
)

// main is the application composition root.
// It wires concrete adapters (SQL, Redis, job feed) behind ports and starts the HTTP server.
func main() {
	config.LoadEnv()

	port := config.Get("PORT", "8080")
	seedPath := config.Get("SEED_PATH", "")

	defaults, err := config.LoadSearchDefaults(config.Get("SEARCH_DEFAULTS_PATH", ""))
	if err != nil {
		log.Fatal(err)
	}
	searchTimeout, err := config.GetDuration("SEARCH_TIMEOUT", 60*time.Second)
	if err != nil {
		log.Fatal(err)
	}
	searchRate, err := config.GetFloat("SEARCH_RATE_PER_SEC", 5)
	if err != nil {
		log.Fatal(err)
	}
	searchBurst, err := config.GetInt("SEARCH_BURST", 10)
	if err != nil {
		log.Fatal(err)
	}
	proximityTTL, err := config.GetDuration("PROXIMITY_TTL", 24*time.Hour)
	if err != nil {
		log.Fatal(err)
	}

	conn, dialect, err := db.OpenFromEnv(config.Get("DATABASE_URL", ""), config.Get("DB_PATH", "data/app.db"))
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	geo, err := newGeodesic(config.Get("GEODESIC", "haversine"))
	if err != nil {
		log.Fatal(err)
	}

	// Initialize schema and seed demo data on startup for local runs.
	if err := initAndSeed(conn, dialect, seedPath, geo); err != nil {
		log.Fatal(err)
	}

	store, closeStore, err := proximityStore(conn, dialect, config.Get("REDIS_URL", ""), proximityTTL)
	if err != nil {
		log.Fatal(err)
	}
	defer closeStore()

	repo := repositories.NewSQLJobRepository(conn)
	var network ports.NetworkSource = repo
	if feedURL := config.Get("JOB_FEED_URL", ""); feedURL != "" {
		f, err := feed.NewHTTPJobFeed(feedURL, config.Get("JOB_FEED_API_KEY", ""), geo)
		if err != nil {
			log.Fatal(err)
		}
		network = f
		log.Printf("Using job feed url=%s", feedURL)
	}

	router := api.NewRouter(api.Deps{
		Locations: network,
		Ping:      conn.PingContext,
		Searches: &handlers.SearchHandler{
			Network:  network,
			Registry: services.NewProximityRegistry(store),
			Geo:      geo,
			Defaults: defaults.Options(),
			Timeout:  searchTimeout,

			AllowedOrigins: splitList(config.Get("WS_ALLOWED_ORIGINS", "")),
		},
		SearchLimiter: rate.NewLimiter(rate.Limit(searchRate), searchBurst),
	})

	// Write timeout leaves room for the longest search; WebSocket streams
	// hijack the connection and are not bound by it.
	log.Printf("Server listening addr=:%s db=%s", port, dialect)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      searchTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func initAndSeed(conn *sql.DB, dialect db.Dialect, seedPath string, geo ports.Geodesic) error {
	ctx := context.Background()

	if err := repositories.InitSchema(ctx, conn); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	if seedPath == "" {
		return nil
	}

	if err := repositories.SeedFromJSON(ctx, conn, dialect, seedPath, geo); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	return nil
}

// newGeodesic selects the distance model. "planar" treats coordinates as
// grid miles, for synthetic networks.
func newGeodesic(name string) (ports.Geodesic, error) {
	switch name {
	case "haversine":
		return geodesic.NewHaversine(), nil
	case "planar":
		return geodesic.NewPlanar(), nil
	default:
		return nil, fmt.Errorf("config: unknown GEODESIC %q", name)
	}
}

// proximityStore prefers Redis when configured and falls back to the SQL table.
func proximityStore(conn *sql.DB, dialect db.Dialect, redisURL string, ttl time.Duration) (ports.ProximityStore, func(), error) {
	if redisURL == "" {
		return cache.NewSQLProximityStore(conn, dialect), func() {}, nil
	}

	s, err := cache.NewRedisProximityStoreFromURL(redisURL, ttl)
	if err != nil {
		return nil, nil, fmt.Errorf("proximity store: %w", err)
	}
	log.Printf("Using redis proximity store ttl=%s", ttl)
	return s, func() { _ = s.Close() }, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
