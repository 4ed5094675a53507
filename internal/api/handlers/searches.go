package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cargo-route-service/internal/api/dto"
	"cargo-route-service/internal/domain"
	"cargo-route-service/internal/metrics"
	"cargo-route-service/internal/platform/obs"
	"cargo-route-service/internal/ports"
	"cargo-route-service/internal/services"

	"github.com/google/uuid"
)

const maxSearchBody = 8 << 20

// SearchHandler runs route searches over the request's network or, when the
// request omits it, over the server's network.
type SearchHandler struct {
	Network  ports.NetworkSource
	Registry *services.ProximityRegistry
	Geo      ports.Geodesic
	Defaults domain.SearchOptions
	// Zero means no deadline beyond the request's own.
	Timeout time.Duration
	// Extra browser origins allowed to open /searches/ws, as scheme://host.
	// Same-origin and Origin-less clients are always accepted; "*" allows any.
	AllowedOrigins []string
}

// Search handles POST /searches and answers with the terminal event.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rank, limit, err := parseRanking(r.URL.Query())
	if err != nil {
		writeError(w, r, statusFor(err), err.Error())
		return
	}

	defer r.Body.Close()
	in, err := decodeSearchRequest(http.MaxBytesReader(w, r.Body, maxSearchBody))
	if err != nil {
		writeError(w, r, statusFor(err), err.Error())
		return
	}

	ctx, cancel := h.searchContext(r.Context())
	defer cancel()

	progress := 0
	res, err := h.run(ctx, in, func(e services.SearchEvent) {
		if e.Status == services.StatusProgress {
			progress++
		}
	})
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			log.Printf("search failed: req_id=%s err=%v", obs.RequestID(ctx), err)
			writeError(w, r, status, "internal server error")
			return
		}
		writeError(w, r, status, err.Error())
		return
	}

	ranked, err := services.RankCandidates(res.Results, rank, limit)
	if err != nil {
		writeError(w, r, statusFor(err), err.Error())
		return
	}

	writeJSON(w, r, http.StatusOK, dto.SearchResponse{
		SearchID:       uuid.NewString(),
		Status:         services.StatusFinished,
		Results:        dto.FromCandidates(ranked),
		ProgressEvents: progress,
		ProgressStep:   res.ProgressStep,
		Stats: dto.SearchStats{
			EdgesVisited: res.Stats.EdgesVisited,
			LegsLoaded:   res.Stats.LegsLoaded,
			FerryHops:    res.Stats.FerryHops,
			Candidates:   res.Stats.Candidates,
		},
	})
}

func (h *SearchHandler) searchContext(parent context.Context) (context.Context, context.CancelFunc) {
	if h.Timeout > 0 {
		return context.WithTimeout(parent, h.Timeout)
	}
	return context.WithCancel(parent)
}

// run resolves the request against the server's network and runs it. emit
// receives exactly one terminal event whatever the outcome.
func (h *SearchHandler) run(ctx context.Context, in dto.SearchRequest, emit func(services.SearchEvent)) (_ services.SearchResult, err error) {
	start := time.Now()
	defer func() { observeSearch(start, err) }()

	req, locations, err := h.prepare(ctx, in)
	if err != nil {
		emit(services.SearchEvent{Status: services.StatusError, Error: err.Error()})
		return services.SearchResult{}, err
	}

	res, err := services.RunSearch(ctx, req, h.Geo, emit)
	if err != nil {
		return services.SearchResult{}, err
	}

	if h.Registry != nil && req.Proximity != nil {
		if err := h.Registry.Persist(context.WithoutCancel(ctx), locations, req.Options.NearbyMiles, req.Proximity); err != nil {
			log.Printf("persist proximity failed: req_id=%s err=%v", obs.RequestID(ctx), err)
		}
	}

	metrics.SearchEdges.Observe(float64(res.Stats.EdgesVisited))
	metrics.SearchCandidates.Observe(float64(res.Stats.Candidates))
	return res, nil
}

func (h *SearchHandler) prepare(ctx context.Context, in dto.SearchRequest) (services.SearchRequest, *domain.LocationSet, error) {
	req := services.SearchRequest{
		Origin:  in.Origin,
		Options: in.Options.Apply(h.Defaults),
	}

	// An explicit empty list is the client's own network; only an omitted
	// field falls back to the server's.
	if in.Locations != nil {
		req.Locations = make([]domain.Location, 0, len(in.Locations))
		for _, l := range in.Locations {
			req.Locations = append(req.Locations, l.Domain())
		}
	}
	if in.Jobs != nil {
		legs := make([]domain.Leg, 0, len(in.Jobs))
		for _, l := range in.Jobs {
			legs = append(legs, l.Domain())
		}
		req.Jobs = domain.NewJobGraph(legs)
	}

	if req.Jobs == nil || req.Locations == nil {
		if h.Network == nil {
			return services.SearchRequest{}, nil, fmt.Errorf("%w: jobs and locations are required", domain.ErrInvalidInput)
		}
		jobs, locations, err := services.LoadNetwork(ctx, h.Network)
		if err != nil {
			return services.SearchRequest{}, nil, err
		}
		if req.Jobs == nil {
			// The search mutates cargo while it runs.
			req.Jobs = jobs.Clone()
		}
		if req.Locations == nil {
			req.Locations = locations
		}
	}

	set := domain.NewLocationSet(req.Locations)
	if h.Registry != nil && req.Options.NearbyMiles > 0 {
		cache, err := h.Registry.Get(ctx, set, req.Options.NearbyMiles)
		if err != nil {
			log.Printf("load proximity failed: req_id=%s err=%v", obs.RequestID(ctx), err)
		} else {
			req.Proximity = cache
		}
	}
	return req, set, nil
}

// decodeSearchRequest reads exactly one JSON invocation message.
func decodeSearchRequest(r io.Reader) (dto.SearchRequest, error) {
	var in dto.SearchRequest

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&in); err != nil {
		return dto.SearchRequest{}, fmt.Errorf("%w: invalid json body: %v", domain.ErrProtocolViolation, err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return dto.SearchRequest{}, fmt.Errorf("%w: body must contain only one JSON object", domain.ErrProtocolViolation)
	}
	return in, nil
}

func parseRanking(q url.Values) (services.RankBy, int, error) {
	rank := services.RankBy(strings.TrimSpace(q.Get("rank")))
	switch rank {
	case "", services.RankByPay, services.RankByPayPerMile:
	default:
		return "", 0, fmt.Errorf("%w: rank must be %q or %q", domain.ErrProtocolViolation, services.RankByPay, services.RankByPayPerMile)
	}

	limit := 0
	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return "", 0, fmt.Errorf("%w: limit must be a non-negative integer", domain.ErrProtocolViolation)
		}
		limit = n
	}
	return rank, limit, nil
}

func observeSearch(start time.Time, err error) {
	outcome := services.StatusFinished
	switch {
	case err == nil:
		metrics.SearchDuration.Observe(time.Since(start).Seconds())
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrProtocolViolation):
		outcome = "invalid"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		outcome = "canceled"
	default:
		outcome = services.StatusError
	}
	metrics.Searches.WithLabelValues(outcome).Inc()
}
