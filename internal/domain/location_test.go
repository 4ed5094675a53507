package domain

import (
	"slices"
	"testing"
)

func TestLocationSetFingerprintIgnoresOrder(t *testing.T) {
	a := NewLocationSet([]Location{
		{ID: "A", Coordinates: Coordinates{Lat: 1, Lon: 2}},
		{ID: "B", Coordinates: Coordinates{Lat: 3, Lon: 4}},
	})
	b := NewLocationSet([]Location{
		{ID: "B", Coordinates: Coordinates{Lat: 3, Lon: 4}},
		{ID: "A", Coordinates: Coordinates{Lat: 1, Lon: 2}},
	})
	moved := NewLocationSet([]Location{
		{ID: "A", Coordinates: Coordinates{Lat: 1, Lon: 2}},
		{ID: "B", Coordinates: Coordinates{Lat: 3, Lon: 5}},
	})

	if a.Fingerprint() != b.Fingerprint() {
		t.Fatal("same content should share a fingerprint")
	}
	if a.Fingerprint() == moved.Fingerprint() {
		t.Fatal("moved coordinates should change the fingerprint")
	}

	if got := b.IDs(); !slices.Equal(got, []string{"B", "A"}) {
		t.Fatalf("IDs = %v, want insertion order", got)
	}
}

func TestLocationSetDuplicateKeepsFirstPosition(t *testing.T) {
	s := NewLocationSet([]Location{
		{ID: "A", Coordinates: Coordinates{Lat: 1}},
		{ID: "B"},
		{ID: "A", Coordinates: Coordinates{Lat: 9}},
	})

	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
	if c, _ := s.Coordinates("A"); c.Lat != 9 {
		t.Fatalf("A = %+v, want latest coordinates", c)
	}
}
