package services

import (
	"fmt"
	"slices"
	"strings"

	"cargo-route-service/internal/domain"
)

type RankBy string

const (
	RankByPay        RankBy = "pay"
	RankByPayPerMile RankBy = "pay_per_mile"
)

// RankCandidates orders candidates best first and keeps at most limit of
// them (limit <= 0 keeps all). The input slice is not modified.
//
// Ties fall back to shorter distance, then fewer hops, then path order, so
// the ranking is deterministic for identical inputs.
func RankCandidates(candidates []domain.RouteCandidate, by RankBy, limit int) ([]domain.RouteCandidate, error) {
	var score func(domain.RouteCandidate) float64
	switch by {
	case RankByPay, "":
		score = func(r domain.RouteCandidate) float64 { return r.Pay }
	case RankByPayPerMile:
		score = domain.RouteCandidate.PayPerMile
	default:
		return nil, fmt.Errorf("rank candidates: %w: unknown ranking %q", domain.ErrInvalidInput, by)
	}

	out := slices.Clone(candidates)
	slices.SortStableFunc(out, func(a, b domain.RouteCandidate) int {
		sa, sb := score(a), score(b)
		if sa > sb {
			return -1
		}
		if sa < sb {
			return 1
		}
		if a.Distance < b.Distance {
			return -1
		}
		if a.Distance > b.Distance {
			return 1
		}
		if a.Hops() != b.Hops() {
			return a.Hops() - b.Hops()
		}
		return strings.Compare(strings.Join(a.Path, ">"), strings.Join(b.Path, ">"))
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
