package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// FeedError is a non-2xx answer from the job feed.
type FeedError struct {
	Status int
	Body   string
}

func (e *FeedError) Error() string {
	return fmt.Sprintf("job feed answered %d: %s", e.Status, e.Body)
}

// Responses after which a fetch is attempted again unless WithRetryOn says otherwise.
var defaultRetryOn = []int{
	http.StatusTooManyRequests,
	http.StatusInternalServerError,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

type FeedOption func(*HTTPJobFeed)

// WithRetryOn replaces the set of statuses that are retried.
func WithRetryOn(codes ...int) FeedOption {
	return func(f *HTTPJobFeed) {
		f.retryOn = make(map[int]bool, len(codes))
		for _, c := range codes {
			f.retryOn[c] = true
		}
	}
}

// WithBackoff sets the wait before the second attempt; it doubles after each
// further failure.
func WithBackoff(d time.Duration) FeedOption {
	return func(f *HTTPJobFeed) { f.backoff = d }
}

func WithMaxAttempts(n int) FeedOption {
	return func(f *HTTPJobFeed) {
		if n > 0 {
			f.maxAttempts = n
		}
	}
}

// getOnce issues a single GET of the feed document. The caller owns the
// body of a successful response.
func (f *HTTPJobFeed) getOnce(ctx context.Context) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if f.apiKey != "" {
		req.Header.Set("Authorization", f.apiKey)
	}

	resp, err := f.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		defer resp.Body.Close()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &FeedError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	return resp, nil
}

func (f *HTTPJobFeed) retryable(err error) bool {
	var fe *FeedError
	if errors.As(err, &fe) {
		return f.retryOn[fe.Status]
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// get fetches the feed document, retrying network failures and the feed's
// retryable statuses until maxAttempts is spent or ctx is done.
func (f *HTTPJobFeed) get(ctx context.Context) (*http.Response, error) {
	wait := f.backoff

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := f.getOnce(ctx)
		if err == nil {
			return resp, nil
		}
		if !f.retryable(err) || attempt >= f.maxAttempts {
			return nil, fmt.Errorf("attempt %d: %w", attempt, err)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		wait *= 2
	}
}
