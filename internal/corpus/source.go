// Package corpus fetches article records from publisher APIs and feeds.
// It defines the Source interface consumed by the pipeline and the error
// taxonomy for fetch failures and malformed records.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/seenimoa/narrative/pkg/models"
)

// Source returns the articles matching query published within [from, to]
// (both dates inclusive). Pagination is the source's concern.
type Source interface {
	// Name returns the human-readable name of this source.
	Name() string

	// Fetch returns the flattened article sequence.
	Fetch(ctx context.Context, query string, from, to time.Time) ([]models.Article, error)
}

// --- Sentinel errors ---

// ErrRateLimited is returned when a source rate-limits the request. Callers back off.
var ErrRateLimited = errors.New("rate limited by source")

// ErrTransient marks network failures and server errors that may be retried.
var ErrTransient = errors.New("transient network error")

// ErrUnauthorized is returned when the API credential is missing or rejected.
var ErrUnauthorized = errors.New("unauthorized: check the API key")

// ErrNoArticles is returned when a fetch succeeds but yields no usable article.
var ErrNoArticles = errors.New("no articles returned")

// FetchError is a fetch that failed after the retry budget was spent, or
// failed with a non-retryable error.
type FetchError struct {
	Source   string
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: fetch %s failed after %d attempt(s): %v", e.Source, e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// HTTPError wraps a non-2xx HTTP response.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
	RetryAfter time.Duration // parsed Retry-After header, zero when absent
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// Unwrap classifies the status so callers can use errors.Is.
func (e *HTTPError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case e.StatusCode >= 500:
		return ErrTransient
	default:
		return nil
	}
}

// MalformedRecordError describes a fetched record missing a required field.
// Such records are skipped, never fatal.
type MalformedRecordError struct {
	ID     string
	Field  string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	id := e.ID
	if id == "" {
		id = "<no id>"
	}
	return fmt.Sprintf("malformed record %s: %s %s", id, e.Field, e.Reason)
}

// FetchStats counts what happened during a fetch.
type FetchStats struct {
	Requests int
	Retries  int
	Pages    int
	Skipped  []*MalformedRecordError
}

// --- Shared HTTP helpers ---

// DefaultUserAgent is the user agent string used for HTTP requests.
const DefaultUserAgent = "narrative/1.0 (+https://github.com/seenimoa/narrative)"

// doGet performs a GET request bounded by timeout and returns the body.
// The caller closes the returned ReadCloser. The request context is
// released when the body is closed.
func doGet(ctx context.Context, client *http.Client, url string, timeout time.Duration, headers map[string]string) (io.ReadCloser, error) {
	reqCtx, cancel := ctx, context.CancelFunc(func() {})
	if timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		cancel()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: GET %s: %v", ErrTransient, redact(url), err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		defer cancel()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	return &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}, nil
}

func newTimeoutClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// --- Rate limiter ---

// RateLimiter provides simple token-bucket rate limiting.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     int
	maxTokens  int
	refillRate time.Duration
	lastRefill time.Time
}

// NewRateLimiter creates a rate limiter that allows maxTokens requests
// per refillRate duration.
func NewRateLimiter(maxTokens int, refillRate time.Duration) *RateLimiter {
	if maxTokens < 1 {
		maxTokens = 1
	}
	return &RateLimiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Wait blocks until a token is available or context is cancelled.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		rl.mu.Lock()
		rl.refill()
		if rl.tokens > 0 {
			rl.tokens--
			rl.mu.Unlock()
			return nil
		}
		rl.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
}

// refill adds tokens based on elapsed time. Must be called with mu held.
func (rl *RateLimiter) refill() {
	if rl.refillRate <= 0 {
		rl.tokens = rl.maxTokens
		return
	}
	now := time.Now()
	elapsed := now.Sub(rl.lastRefill)
	if elapsed >= rl.refillRate {
		periods := int(elapsed / rl.refillRate)
		rl.tokens += periods
		if rl.tokens > rl.maxTokens {
			rl.tokens = rl.maxTokens
		}
		rl.lastRefill = rl.lastRefill.Add(time.Duration(periods) * rl.refillRate)
	}
}
