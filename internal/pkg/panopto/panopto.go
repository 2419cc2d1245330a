// Package panopto lists the lecture recordings a course publishes through
// the Panopto tool integrated in Canvas.
package panopto

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/canvas"
	"github.com/gojektech/heimdall/v6/httpclient"
)

// Config holds the settings shared by every Panopto client of a run
type Config struct {
	// ToolID is the id of the Panopto external tool in Canvas
	ToolID int64
	// Gate admits each request attempt
	Gate      canvas.Admitter
	Timeout   time.Duration
	Retry     canvas.RetryPolicy
	UserAgent string
}

// LaunchURL returns the Canvas page launching the tool for a course
func (c Config) LaunchURL(canvasURL string, courseID int64) string {
	return fmt.Sprintf("%s/courses/%d/external_tools/%d", strings.TrimRight(canvasURL, "/"), courseID, c.ToolID)
}

// Client talks to a Panopto server within one authenticated web session
type Client struct {
	http      *httpclient.Client
	server    *url.URL
	userAgent string

	// FolderID is the course folder the tool launch landed on
	FolderID string
}

// Launch follows a Canvas web login URL with a fresh cookie jar, submits
// the Panopto tool launch form found there and returns a client for the
// Panopto server it redirects to. A page without launch form returns
// ErrNoLaunchForm.
func Launch(ctx context.Context, cfg Config, canvasURL, sessionURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	doer := &gatedDoer{
		client: &http.Client{
			Jar:     jar,
			Timeout: timeout,
			// The launch redirect carries the folder, it must not be followed
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if via[0].Method == http.MethodPost {
					return http.ErrUseLastResponse
				}
				if len(via) >= 10 {
					return fmt.Errorf("stopped after %d redirects", len(via))
				}
				return nil
			},
		},
		gate: cfg.Gate,
	}

	options := []httpclient.Option{httpclient.WithHTTPClient(doer)}
	if retrier := cfg.Retry.Retrier(); retrier != nil {
		options = append(options,
			httpclient.WithRetrier(retrier),
			httpclient.WithRetryCount(cfg.Retry.Attempts()-1))
	}

	c := &Client{
		http:      httpclient.NewClient(options...),
		userAgent: cfg.UserAgent,
	}

	page, err := c.send(ctx, http.MethodGet, sessionURL, nil, "")
	if err != nil {
		return nil, err
	}

	action, form, err := launchForm(page, sessionURL)
	if err != nil {
		return nil, err
	}

	req, err := c.request(ctx, http.MethodPost, action, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return nil, err
	}
	req.Header.Set("Origin", strings.TrimRight(canvasURL, "/"))
	req.Header.Set("Referer", strings.TrimRight(canvasURL, "/")+"/")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	location, err := resp.Location()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoFolder, action)
	}

	folderID := location.Query().Get("folderID")
	if folderID == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoFolder, location)
	}

	c.server = &url.URL{Scheme: location.Scheme, Host: location.Host}
	c.FolderID = folderID

	return c, nil
}

// launchForm finds the Panopto launch form of an external tool page and
// returns its absolute action URL with its fields
func launchForm(page []byte, pageURL string) (string, url.Values, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", nil, err
	}

	form := doc.Find("form[data-tool-id]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.AttrOr("data-tool-id", ""), "panopto")
	}).First()
	if form.Length() == 0 {
		return "", nil, ErrNoLaunchForm
	}

	action, ok := form.Attr("action")
	if !ok || action == "" {
		return "", nil, fmt.Errorf("%w: form without action", ErrNoLaunchForm)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return "", nil, err
	}
	ref, err := url.Parse(action)
	if err != nil {
		return "", nil, err
	}

	fields := url.Values{}
	form.Find("input[name]").Each(func(_ int, s *goquery.Selection) {
		fields.Add(s.AttrOr("name", ""), s.AttrOr("value", ""))
	})

	return base.ResolveReference(ref).String(), fields, nil
}

func (c *Client) request(ctx context.Context, method, rawURL string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, nil
}

// send performs a request and returns the body of a 2xx response
func (c *Client) send(ctx context.Context, method, rawURL string, body []byte, contentType string) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := c.request(ctx, method, rawURL, reader, contentType)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		if resp != nil && resp.StatusCode >= 500 {
			return nil, statusError(resp)
		}
		return nil, &canvas.APIError{Kind: canvas.KindTransientNetwork, URL: rawURL, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp)
	}

	return io.ReadAll(resp.Body)
}

// postJSON sends payload as JSON and decodes the response into out. The
// raw response is returned as well.
func (c *Client) postJSON(ctx context.Context, path string, payload, out any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	raw, err := c.send(ctx, http.MethodPost, c.endpoint(path), body, "application/json")
	if err != nil {
		return nil, err
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return nil, &canvas.APIError{Kind: canvas.KindDecode, URL: c.endpoint(path), Err: err}
		}
	}

	return raw, nil
}

func (c *Client) endpoint(path string) string {
	return c.server.ResolveReference(&url.URL{Path: path}).String()
}
