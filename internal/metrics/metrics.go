package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the service.
	Registry = prometheus.NewRegistry()

	// HTTPRequests counts requests by method, path, and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path"},
	)

	// Searches counts route searches by outcome (finished, invalid, error, canceled).
	Searches = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "route_searches_total", Help: "Route searches by outcome."},
		[]string{"outcome"},
	)
	// SearchDuration tracks wall time of completed searches.
	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "route_search_duration_seconds", Help: "Route search duration in seconds.", Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60}},
	)
	// SearchEdges tracks edges visited per search.
	SearchEdges = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "route_search_edges_visited", Help: "Edges visited per route search.", Buckets: prometheus.ExponentialBuckets(1, 4, 10)},
	)
	// SearchCandidates tracks route candidates produced per search.
	SearchCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "route_search_candidates", Help: "Route candidates produced per search.", Buckets: prometheus.ExponentialBuckets(1, 4, 10)},
	)
)

var regOnce sync.Once

// RegisterDefault registers the service collectors on Registry. Safe to call more than once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(Searches)
		Registry.MustRegister(SearchDuration)
		Registry.MustRegister(SearchEdges)
		Registry.MustRegister(SearchCandidates)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
