package domain

import (
	"encoding/binary"
	"math"
	"slices"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Location is a reference point (airport, depot, station) the jobs connect.
type Location struct {
	ID          string
	Coordinates Coordinates
}

// LocationSet is the ordered candidate set used for proximity search.
// Iteration order is insertion order; lookups are by id.
type LocationSet struct {
	ids    []string
	coords map[string]Coordinates
}

func NewLocationSet(locations []Location) *LocationSet {
	s := &LocationSet{
		ids:    make([]string, 0, len(locations)),
		coords: make(map[string]Coordinates, len(locations)),
	}
	for _, l := range locations {
		if _, ok := s.coords[l.ID]; ok {
			s.coords[l.ID] = l.Coordinates
			continue
		}
		s.ids = append(s.ids, l.ID)
		s.coords[l.ID] = l.Coordinates
	}
	return s
}

// Coordinates returns the coordinate of a location id.
func (s *LocationSet) Coordinates(id string) (Coordinates, bool) {
	c, ok := s.coords[id]
	return c, ok
}

// IDs returns the location ids in insertion order.
func (s *LocationSet) IDs() []string { return slices.Clone(s.ids) }

func (s *LocationSet) Len() int { return len(s.ids) }

// Fingerprint identifies the content of the set regardless of order.
// Two sets with the same ids and coordinates share a fingerprint, so a
// proximity cache built for one is valid for the other.
func (s *LocationSet) Fingerprint() string {
	ids := slices.Clone(s.ids)
	slices.Sort(ids)

	h := xxhash.New()
	var buf [8]byte
	for _, id := range ids {
		_, _ = h.WriteString(id)
		_, _ = h.Write([]byte{0})
		c := s.coords[id]
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(c.Lat))
		_, _ = h.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(c.Lon))
		_, _ = h.Write(buf[:])
	}
	return strconv.FormatUint(h.Sum64(), 16)
}
