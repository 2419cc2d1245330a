// Package canvas is a client for the Canvas LMS REST API.
package canvas

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/canvas-downloader/canvas-downloader/internal/pkg/log"
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/stats"
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/utils"
	"github.com/gojektech/heimdall/v6"
)

// Admitter bounds concurrent network operations
type Admitter interface {
	Acquire(ctx context.Context) error
	Release()
}

// Client performs authenticated, retried requests against one Canvas instance
type Client struct {
	baseURL   *url.URL
	token     string
	http      *http.Client
	gate      Admitter
	retry     RetryPolicy
	backoff   heimdall.Retriable
	timeout   time.Duration
	perPage   int
	userAgent string
	logger    *log.FieldedLogger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithGate makes every API attempt hold a ticket of gate
func WithGate(gate Admitter) Option { return func(c *Client) { c.gate = gate } }

// WithRetryPolicy sets the retry policy
func WithRetryPolicy(p RetryPolicy) Option { return func(c *Client) { c.retry = p } }

// WithTimeout bounds each API attempt, body included. For downloads it
// bounds the wait for the response headers and every read of the body.
func WithTimeout(d time.Duration) Option { return func(c *Client) { c.timeout = d } }

// WithPerPage sets the page size requested from list endpoints
func WithPerPage(n int) Option { return func(c *Client) { c.perPage = n } }

// NewClient returns a client for the Canvas instance at baseURL
func NewClient(baseURL, token string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}

	c := &Client{
		baseURL:   u,
		token:     token,
		http:      &http.Client{},
		retry:     DefaultRetryPolicy(),
		timeout:   10 * time.Second,
		perPage:   100,
		userAgent: utils.UserAgent(),
		logger: log.NewFieldedLogger(&log.Fields{
			"component": "canvas",
		}),
	}

	for _, opt := range opts {
		opt(c)
	}
	c.backoff = c.retry.Retrier()

	return c, nil
}

// BaseURL returns the Canvas instance URL without trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Endpoint resolves a path such as "/api/v1/users/self" against the base URL.
// Absolute URLs are returned unchanged.
func (c *Client) Endpoint(path string) string {
	ref, err := url.Parse(path)
	if err != nil {
		return path
	}
	return c.baseURL.ResolveReference(ref).String()
}

// withPerPage adds the per_page parameter to a list endpoint if missing
func (c *Client) withPerPage(rawURL string) string {
	if c.perPage <= 0 {
		return rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	q := u.Query()
	if q.Get("per_page") != "" {
		return rawURL
	}
	q.Set("per_page", strconv.Itoa(c.perPage))
	u.RawQuery = q.Encode()

	return u.String()
}

// getBody fetches rawURL with the retry policy and returns the full body.
// Each attempt holds a gate ticket that is released before any backoff.
func (c *Client) getBody(ctx context.Context, rawURL string) ([]byte, http.Header, error) {
	var (
		body   []byte
		header http.Header
	)

	err := c.withRetry(ctx, rawURL, func(ctx context.Context) (*http.Response, error) {
		if err := c.admit(ctx); err != nil {
			return nil, err
		}
		defer c.release()

		if c.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}

		resp, err := c.do(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
			return resp, nil
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		header = resp.Header

		return resp, nil
	})

	return body, header, err
}

// Open starts a download of rawURL with the retry policy and returns the
// response body. Like API requests, each attempt holds a gate ticket; the
// ticket of the successful attempt is handed to the body and released by
// Close. A body read that gets no data within the client timeout fails
// with ErrStalled.
func (c *Client) Open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	var body io.ReadCloser

	err := c.withRetry(ctx, rawURL, func(ctx context.Context) (*http.Response, error) {
		if err := c.admit(ctx); err != nil {
			return nil, err
		}

		attemptCtx, cancel := context.WithCancel(ctx)
		watchdog := newWatchdog(c.timeout, cancel)

		watchdog.arm()
		resp, err := c.do(attemptCtx, rawURL)
		watchdog.disarm()

		if err != nil {
			cancel()
			c.release()
			if watchdog.fired() {
				err = fmt.Errorf("%w: %v", ErrStalled, err)
			}
			return nil, err
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
			resp.Body.Close()
			cancel()
			c.release()
			return resp, nil
		}

		body = &stream{
			body:     resp.Body,
			url:      rawURL,
			watchdog: watchdog,
			cancel:   cancel,
			release:  c.release,
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	return body, nil
}

// withRetry runs attempt until it yields a 2xx response, a terminal failure
// or the attempt ceiling is reached. attempt returns (nil, err) on transport
// errors and a response with an already drained body otherwise.
func (c *Client) withRetry(ctx context.Context, rawURL string, attempt func(ctx context.Context) (*http.Response, error)) error {
	maxAttempts := c.retry.Attempts()

	for retry := 0; retry < maxAttempts; retry++ {
		resp, err := attempt(ctx)

		var lastErr *APIError
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = &APIError{Kind: KindTransientNetwork, URL: rawURL, Err: err}
		case resp.StatusCode >= 200 && resp.StatusCode <= 299:
			return nil
		case !retryableStatus(resp.StatusCode):
			return &APIError{Kind: statusKind(resp.StatusCode), StatusCode: resp.StatusCode, URL: rawURL, Err: errors.New(resp.Status)}
		default:
			lastErr = &APIError{Kind: statusKind(resp.StatusCode), StatusCode: resp.StatusCode, URL: rawURL, Err: errors.New(resp.Status)}
		}

		if retry == maxAttempts-1 {
			lastErr.Err = fmt.Errorf("%w after %d attempts: %w", ErrRetriesExceeded, maxAttempts, lastErr.Err)
			c.logger.Debug("retries exceeded", "url", rawURL, "kind", lastErr.Kind.String(), "status_code", lastErr.StatusCode)
			return lastErr
		}

		var retrySleepTime time.Duration
		if c.backoff != nil {
			retrySleepTime = c.backoff.NextInterval(retry)
		}
		if minimum := retryAfter(resp); minimum > retrySleepTime {
			retrySleepTime = minimum
		}

		stats.RetriesIncr()
		c.logger.Debug("retrying request", "url", rawURL, "reason", lastErr.Kind.String(), "status_code", lastErr.StatusCode, "retry", retry+1, "sleep_time", retrySleepTime)

		if err := sleep(ctx, retrySleepTime); err != nil {
			return err
		}
	}

	return nil
}

// do issues one authenticated GET
func (c *Client) do(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	// Links to other hosts, like a video CDN, never get the token
	if req.URL.Host == c.baseURL.Host {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	stats.RequestsIncr()
	return c.http.Do(req)
}

func (c *Client) admit(ctx context.Context) error {
	if c.gate == nil {
		return nil
	}
	return c.gate.Acquire(ctx)
}

func (c *Client) release() {
	if c.gate != nil {
		c.gate.Release()
	}
}
