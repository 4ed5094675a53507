package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cargo-route-service/internal/domain"
)

func TestLoadSearchDefaultsOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "search.yaml")
	body := "max_passengers: 9\nmax_hops: 2\nnearby_miles: 35\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	d, err := LoadSearchDefaults(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if d.MaxPassengers != 9 || d.MaxHops != 2 || d.NearbyMiles != 35 {
		t.Fatalf("overrides not applied: %+v", d)
	}
	// Untouched keys keep the built-in defaults.
	if d.MaxWeightKg != DefaultSearchDefaults().MaxWeightKg {
		t.Fatalf("MaxWeightKg = %v, want default", d.MaxWeightKg)
	}
}

func TestLoadSearchDefaultsRejectsInvalidOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "search.yaml")
	if err := os.WriteFile(path, []byte("nearby_miles: 0\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := LoadSearchDefaults(path)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestGetHelpers(t *testing.T) {
	t.Setenv("CFG_INT", "12")
	t.Setenv("CFG_DUR", "90s")
	t.Setenv("CFG_BAD", "x")

	if n, err := GetInt("CFG_INT", 1); err != nil || n != 12 {
		t.Fatalf("GetInt = %d, %v", n, err)
	}
	if d, err := GetDuration("CFG_DUR", time.Second); err != nil || d != 90*time.Second {
		t.Fatalf("GetDuration = %v, %v", d, err)
	}
	if _, err := GetFloat("CFG_BAD", 1); err == nil {
		t.Fatal("expected error for non-numeric value")
	}
	if v := Get("CFG_MISSING", "fallback"); v != "fallback" {
		t.Fatalf("Get = %q, want fallback", v)
	}
}
