package canvas

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/tomnomnom/linkheader"
)

// FetchAll reads every page of a list endpoint and returns the records in
// server order. A failing page aborts the whole fetch.
func FetchAll[T any](ctx context.Context, c *Client, endpoint string) ([]T, error) {
	records, _, err := fetchAll[T](ctx, c, endpoint, false)
	return records, err
}

// FetchAllJSON is FetchAll that also returns the records of every page as
// one indented JSON array
func FetchAllJSON[T any](ctx context.Context, c *Client, endpoint string) ([]T, []byte, error) {
	return fetchAll[T](ctx, c, endpoint, true)
}

func fetchAll[T any](ctx context.Context, c *Client, endpoint string, keepRaw bool) ([]T, []byte, error) {
	next := c.withPerPage(c.Endpoint(endpoint))
	seen := map[string]struct{}{}
	records := []T{}
	raw := []json.RawMessage{}

	for next != "" {
		if _, ok := seen[next]; ok {
			break
		}
		seen[next] = struct{}{}

		body, header, err := c.getBody(ctx, next)
		if err != nil {
			return nil, nil, err
		}

		page, err := DecodeList[T](body)
		if err != nil {
			return nil, nil, withURL(err, next)
		}
		records = append(records, page...)

		if keepRaw {
			rawPage, err := DecodeList[json.RawMessage](body)
			if err != nil {
				return nil, nil, withURL(err, next)
			}
			raw = append(raw, rawPage...)
		}

		next = nextPage(header.Get("Link"), next)
	}

	if !keepRaw {
		return records, nil, nil
	}

	compact, err := json.Marshal(raw)
	if err != nil {
		return nil, nil, &APIError{Kind: KindDecode, URL: endpoint, Err: err}
	}

	return records, indent(compact), nil
}

// FetchOne reads a single object endpoint
func FetchOne[T any](ctx context.Context, c *Client, endpoint string) (*T, error) {
	out, _, err := FetchOneJSON[T](ctx, c, endpoint)
	return out, err
}

// FetchOneJSON is FetchOne that also returns the object as indented JSON
func FetchOneJSON[T any](ctx context.Context, c *Client, endpoint string) (*T, []byte, error) {
	rawURL := c.Endpoint(endpoint)

	body, _, err := c.getBody(ctx, rawURL)
	if err != nil {
		return nil, nil, err
	}

	out, err := DecodeObject[T](body)
	if err != nil {
		return nil, nil, withURL(err, rawURL)
	}

	return out, indent(bytes.TrimSpace(body)), nil
}

// indent pretty prints a JSON document with two spaces. Input that is not
// valid JSON is returned as is.
func indent(doc []byte) []byte {
	var buf bytes.Buffer
	if err := json.Indent(&buf, doc, "", "  "); err != nil {
		return doc
	}
	buf.WriteByte('\n')
	return buf.Bytes()
}

// nextPage returns the rel="next" link of a Link header, or "" when the
// current page is the last one
func nextPage(header, current string) string {
	if header == "" {
		return ""
	}

	var next, cur, last string
	for _, link := range linkheader.Parse(header) {
		switch link.Rel {
		case "next":
			next = link.URL
		case "current":
			cur = link.URL
		case "last":
			last = link.URL
		}
	}

	if next == "" || next == current {
		return ""
	}
	if cur != "" && cur == last {
		return ""
	}

	return next
}

func withURL(err error, rawURL string) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.URL == "" {
		apiErr.URL = rawURL
	}
	return err
}
