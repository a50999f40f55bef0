package corpus

import (
	"context"
	"errors"
	"net/url"
	"time"
)

// RetryPolicy bounds retries of a single request with exponential backoff.
type RetryPolicy struct {
	MaxRetries int           // retries after the first attempt
	BaseDelay  time.Duration // delay before the first retry, doubled each time
	MaxDelay   time.Duration // cap on a single delay, zero for no cap
}

// DefaultRetryPolicy returns 3 retries starting at one second.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, BaseDelay: time.Second, MaxDelay: 30 * time.Second}
}

// Retryable reports whether err is worth another attempt.
func Retryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrTransient)
}

// Backoff returns the delay before retry number attempt (0-based).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 0; i < attempt; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// Do runs op until it succeeds, fails with a non-retryable error, or the
// retry budget is spent. It returns the number of attempts made. A
// Retry-After hint from a rate-limited response lengthens the wait.
func (p RetryPolicy) Do(ctx context.Context, op func(ctx context.Context) error) (int, error) {
	attempts := 0
	for {
		attempts++
		err := op(ctx)
		if err == nil {
			return attempts, nil
		}
		if !Retryable(err) || attempts > p.MaxRetries {
			return attempts, err
		}

		wait := p.Backoff(attempts - 1)
		var he *HTTPError
		if errors.As(err, &he) && he.RetryAfter > wait {
			wait = he.RetryAfter
		}

		select {
		case <-ctx.Done():
			return attempts, ctx.Err()
		case <-time.After(wait):
		}
	}
}

// redact removes credentials from a URL before it is logged or wrapped in
// an error.
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if q.Has("api-key") {
		q.Set("api-key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
