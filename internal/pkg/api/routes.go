package api

import (
	"net/http"

	"github.com/canvas-downloader/canvas-downloader/internal/pkg/stats"
)

// registerRoutes attaches all API handlers to mux.
func registerRoutes(mux *http.ServeMux, status StatusFunc) {
	if handler, err := stats.PrometheusHandler(); err == nil {
		mux.Handle("/metrics", handler)
	}
	mux.HandleFunc("/status", statusHandler(status))
}
