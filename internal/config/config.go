package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"cargo-route-service/internal/domain"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadEnv loads a .env file when present. Variables already set win.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}
}

func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func GetInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not an integer: %w", key, v, err)
	}
	return n, nil
}

func GetFloat(key string, fallback float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not a number: %w", key, v, err)
	}
	return f, nil
}

func GetDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not a duration: %w", key, v, err)
	}
	return d, nil
}

// SearchDefaults are the options applied to requests that leave them out.
type SearchDefaults struct {
	MaxPassengers int     `yaml:"max_passengers"`
	MaxWeightKg   float64 `yaml:"max_weight_kg"`
	MaxHops       int     `yaml:"max_hops"`
	MaxStopovers  int     `yaml:"max_stopovers"`
	MaxBadLegs    int     `yaml:"max_bad_legs"`
	MinPaxLoad    int     `yaml:"min_pax_load"`
	MinKgLoad     float64 `yaml:"min_kg_load"`
	NearbyMiles   float64 `yaml:"nearby_miles"`
}

func DefaultSearchDefaults() SearchDefaults {
	return SearchDefaults{
		MaxPassengers: 4,
		MaxWeightKg:   500,
		MaxHops:       4,
		MaxStopovers:  domain.DefaultMaxStopovers,
		MaxBadLegs:    1,
		MinPaxLoad:    1,
		MinKgLoad:     50,
		NearbyMiles:   domain.DefaultNearbyMiles,
	}
}

// Options converts the defaults into search options.
func (d SearchDefaults) Options() domain.SearchOptions {
	return domain.SearchOptions{
		MaxPassengers: d.MaxPassengers,
		MaxWeightKg:   d.MaxWeightKg,
		MaxHops:       d.MaxHops,
		MaxStopovers:  d.MaxStopovers,
		MaxBadLegs:    d.MaxBadLegs,
		MinPaxLoad:    d.MinPaxLoad,
		MinKgLoad:     d.MinKgLoad,
		NearbyMiles:   d.NearbyMiles,
	}
}

// LoadSearchDefaults reads a YAML file over the built-in defaults. An empty
// path returns the built-in defaults.
func LoadSearchDefaults(path string) (SearchDefaults, error) {
	d := DefaultSearchDefaults()
	if path == "" {
		return d, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return SearchDefaults{}, fmt.Errorf("config: read search defaults %q: %w", path, err)
	}

	if err := yaml.Unmarshal(b, &d); err != nil {
		return SearchDefaults{}, fmt.Errorf("config: parse search defaults %q: %w", path, err)
	}

	if err := d.Options().Validate(); err != nil {
		return SearchDefaults{}, fmt.Errorf("config: search defaults %q: %w", path, err)
	}
	return d, nil
}
