package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"cargo-route-service/internal/domain"
	"cargo-route-service/internal/platform/obs"
	"cargo-route-service/internal/ports"
)

// HTTPJobFeed loads a job network from a JSON document served over HTTP.
//
// It implements ports.NetworkSource. A fetched document is reused for
// ttl so that loading locations and jobs for one search costs one request.
// The feed is safe for concurrent use.
type HTTPJobFeed struct {
	session     *http.Client
	url         string
	apiKey      string
	geo         ports.Geodesic
	maxAttempts int
	backoff     time.Duration
	retryOn     map[int]bool
	ttl         time.Duration

	mu        sync.Mutex
	doc       Document
	fetchedAt time.Time
}

func NewHTTPJobFeed(url, apiKey string, geo ports.Geodesic, opts ...FeedOption) (*HTTPJobFeed, error) {
	if url == "" {
		return nil, errors.New("job feed url is empty")
	}
	if geo == nil {
		return nil, errors.New("job feed geodesic is nil")
	}

	f := &HTTPJobFeed{
		session:     &http.Client{Timeout: 30 * time.Second},
		url:         url,
		apiKey:      apiKey,
		geo:         geo,
		maxAttempts: 4,
		backoff:     200 * time.Millisecond,
		ttl:         30 * time.Second,
	}
	WithRetryOn(defaultRetryOn...)(f)
	for _, o := range opts {
		o(f)
	}
	return f, nil
}

// Fetch downloads the document, or returns the copy fetched within ttl.
func (f *HTTPJobFeed) Fetch(ctx context.Context) (_ Document, err error) {
	defer obs.Time(ctx, "feed.Fetch")(&err)

	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.fetchedAt.IsZero() && time.Since(f.fetchedAt) < f.ttl {
		return f.doc, nil
	}

	resp, err := f.get(ctx)
	if err != nil {
		return Document{}, fmt.Errorf("fetch job feed: %w", err)
	}
	defer resp.Body.Close()

	doc, err := ReadDocument(resp.Body)
	if err != nil {
		return Document{}, fmt.Errorf("fetch job feed: %w", err)
	}

	f.doc, f.fetchedAt = doc, time.Now()
	return doc, nil
}

func (f *HTTPJobFeed) ListLocations(ctx context.Context) ([]domain.Location, error) {
	doc, err := f.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return doc.DomainLocations()
}

func (f *HTTPJobFeed) LoadJobGraph(ctx context.Context) (domain.JobGraph, error) {
	doc, err := f.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	legs, err := doc.DomainLegs(f.geo)
	if err != nil {
		return nil, err
	}
	return domain.NewJobGraph(legs), nil
}
