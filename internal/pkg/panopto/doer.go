package panopto

import (
	"bytes"
	"io"
	"net/http"

	"github.com/canvas-downloader/canvas-downloader/internal/pkg/canvas"
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/stats"
)

// maxBodySize bounds the API and playlist responses kept in memory
const maxBodySize = 32 << 20

// gatedDoer performs one attempt under a gate ticket. The response body is
// read before the ticket is released, so no ticket outlives its attempt.
type gatedDoer struct {
	client *http.Client
	gate   canvas.Admitter
}

func (d *gatedDoer) Do(req *http.Request) (*http.Response, error) {
	if d.gate != nil {
		if err := d.gate.Acquire(req.Context()); err != nil {
			return nil, err
		}
		defer d.gate.Release()
	}

	stats.RequestsIncr()

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	return resp, nil
}
