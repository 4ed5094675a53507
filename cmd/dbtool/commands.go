package main

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"cargo-route-service/internal/adapters/cache"
	"cargo-route-service/internal/adapters/feed"
	"cargo-route-service/internal/adapters/geodesic"
	"cargo-route-service/internal/adapters/repositories"
	"cargo-route-service/internal/config"
	"cargo-route-service/internal/domain"
	"cargo-route-service/internal/platform/db"
	"cargo-route-service/internal/services"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "dbtool",
		Short:         "Manage the cargo route database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newSeedCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newWarmCmd())

	return rootCmd
}

// openDB opens the database named by DATABASE_URL or DB_PATH and makes sure
// the schema exists.
func openDB(cmd *cobra.Command) (*sql.DB, db.Dialect, error) {
	conn, dialect, err := db.OpenFromEnv(config.Get("DATABASE_URL", ""), config.Get("DB_PATH", "data/app.db"))
	if err != nil {
		return nil, 0, err
	}

	if err := repositories.InitSchema(cmd.Context(), conn); err != nil {
		_ = conn.Close()
		return nil, 0, err
	}
	return conn, dialect, nil
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log.Println("Initializing database schema...")
			conn, dialect, err := openDB(cmd)
			if err != nil {
				return fmt.Errorf("schema initialization failed: %w", err)
			}
			defer conn.Close()
			log.Printf("Schema ready. db=%s", dialect)
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace the stored job network with a JSON document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("file")

			conn, dialect, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer conn.Close()

			log.Printf("Seeding database... file=%s", path)
			if err := repositories.SeedFromJSON(cmd.Context(), conn, dialect, path, geodesic.NewHaversine()); err != nil {
				return fmt.Errorf("seeding failed: %w", err)
			}
			log.Println("Seeding complete.")
			return nil
		},
	}

	cmd.Flags().StringP("file", "f", config.Get("SEED_PATH", "data/seeds/network.json"), "Network document to load")

	return cmd
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the stored job network with the job feed's current document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			url, _ := cmd.Flags().GetString("url")
			apiKey, _ := cmd.Flags().GetString("api-key")

			geo := geodesic.NewHaversine()
			f, err := feed.NewHTTPJobFeed(url, apiKey, geo)
			if err != nil {
				return err
			}

			doc, err := f.Fetch(cmd.Context())
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}

			conn, dialect, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := repositories.SeedDocument(cmd.Context(), conn, dialect, doc, geo); err != nil {
				return fmt.Errorf("import failed: %w", err)
			}
			log.Printf("Import complete. locations=%d jobs=%d", len(doc.Locations), len(doc.Jobs))
			return nil
		},
	}

	cmd.Flags().String("url", config.Get("JOB_FEED_URL", ""), "Job feed URL")
	cmd.Flags().String("api-key", config.Get("JOB_FEED_API_KEY", ""), "Job feed API key")

	return cmd
}

func newWarmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "warm",
		Short: "Precompute and persist ferry candidates for the stored locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			miles, _ := cmd.Flags().GetFloat64("nearby-miles")
			redisURL, _ := cmd.Flags().GetString("redis-url")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			if !(miles > 0) {
				return fmt.Errorf("warm: %w: nearby-miles must be positive", domain.ErrInvalidInput)
			}

			conn, dialect, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer conn.Close()

			locs, err := repositories.NewSQLJobRepository(conn).ListLocations(cmd.Context())
			if err != nil {
				return err
			}
			set := domain.NewLocationSet(locs)

			var registry *services.ProximityRegistry
			if redisURL != "" {
				store, err := cache.NewRedisProximityStoreFromURL(redisURL, ttl)
				if err != nil {
					return err
				}
				defer store.Close()
				registry = services.NewProximityRegistry(store)
			} else {
				registry = services.NewProximityRegistry(cache.NewSQLProximityStore(conn, dialect))
			}

			proximity, err := registry.Get(cmd.Context(), set, miles)
			if err != nil {
				return err
			}

			added, err := services.WarmProximity(cmd.Context(), set, geodesic.NewHaversine(), miles, proximity)
			if err != nil {
				return err
			}
			if err := registry.Persist(cmd.Context(), set, miles, proximity); err != nil {
				return err
			}

			log.Printf("Warm complete. key=%s locations=%d computed=%d", services.ProximityKey(set, miles), set.Len(), added)
			return nil
		},
	}

	cmd.Flags().Float64("nearby-miles", domain.DefaultNearbyMiles, "Ferry radius in statute miles")
	cmd.Flags().String("redis-url", config.Get("REDIS_URL", ""), "Persist to Redis instead of the database")
	cmd.Flags().Duration("ttl", 24*time.Hour, "Redis entry lifetime")

	return cmd
}
