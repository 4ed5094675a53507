package api

import (
	"context"
	"net/http"

	"cargo-route-service/internal/api/handlers"
	"cargo-route-service/internal/metrics"
	"cargo-route-service/internal/ports"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Locations ports.LocationRepository
	Searches  *handlers.SearchHandler
	// Optional storage check for /health.
	Ping func(ctx context.Context) error

	// Token bucket shared by the search endpoints. Nil disables limiting.
	SearchLimiter *rate.Limiter
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Deps) http.Handler {
	metrics.RegisterDefault()

	mux := http.NewServeMux()

	locHandler := &handlers.LocationHandler{Repo: deps.Locations}
	healthHandler := &handlers.HealthHandler{Ping: deps.Ping}

	mux.HandleFunc("/health", healthHandler.Check)
	mux.HandleFunc("/locations", locHandler.List)
	mux.Handle("/searches", rateLimit(deps.SearchLimiter, http.HandlerFunc(deps.Searches.Search)))
	mux.Handle("/searches/ws", rateLimit(deps.SearchLimiter, http.HandlerFunc(deps.Searches.Stream)))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	return requestIDMiddleware(loggingMiddleware(mux))
}
