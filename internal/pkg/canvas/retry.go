package canvas

import (
	"context"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gojektech/heimdall/v6"
)

// RetryPolicy decides how often and how long to wait before retrying a request
type RetryPolicy struct {
	MaxAttempts int           // MaxAttempts is the total number of attempts, first one included
	BaseDelay   time.Duration // BaseDelay is the wait after the first failed attempt, doubled each time
	MaxDelay    time.Duration // MaxDelay caps the doubled delay, defaults to 64 times BaseDelay
}

// DefaultRetryPolicy returns 3 attempts with a 500ms base delay
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    30 * time.Second,
	}
}

// Attempts returns the number of attempts a request gets, at least one
func (p RetryPolicy) Attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Retrier returns the backoff schedule of the policy: BaseDelay * 2^retry,
// capped at MaxDelay, plus a random jitter of up to BaseDelay/2 (at least 1ms).
// It is nil when the policy does not wait between attempts.
func (p RetryPolicy) Retrier() heimdall.Retriable {
	if p.BaseDelay <= 0 {
		return nil
	}

	maxDelay := p.MaxDelay
	if maxDelay < p.BaseDelay {
		maxDelay = p.BaseDelay << 6
	}

	// heimdall works in whole milliseconds
	jitter := p.BaseDelay / 2
	if jitter < time.Millisecond {
		jitter = time.Millisecond
	}

	backoff := heimdall.NewExponentialBackoff(p.BaseDelay, maxDelay, 2, jitter)
	return heimdall.NewRetrier(backoff)
}

// Delay returns the wait after the given zero-based failed attempt
func (p RetryPolicy) Delay(attempt int) time.Duration {
	retrier := p.Retrier()
	if retrier == nil {
		return 0
	}
	return retrier.NextInterval(attempt)
}

// retryableStatus reports whether a response status is worth another attempt.
// Canvas answers 403 when a token is throttled, so 403 is retried too.
func retryableStatus(code int) bool {
	return code >= 500 || slices.Contains([]int{
		http.StatusForbidden,
		http.StatusRequestTimeout,
		http.StatusTooEarly,
		http.StatusTooManyRequests,
	}, code)
}

// statusKind maps a non-2xx status to the error taxonomy
func statusKind(code int) Kind {
	switch {
	case code == http.StatusTooManyRequests:
		return KindRateLimited
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return KindPermissionDenied
	case code == http.StatusNotFound || code == http.StatusGone:
		return KindNotFound
	case retryableStatus(code):
		return KindTransientNetwork
	default:
		return KindRemote
	}
}

// retryAfter parses a Retry-After header given in seconds
func retryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}

	seconds, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || seconds <= 0 {
		return 0
	}

	return time.Duration(seconds) * time.Second
}

// sleep waits for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
