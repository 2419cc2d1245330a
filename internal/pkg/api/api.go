// Package api serves the run status and the prometheus metrics over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/canvas-downloader/canvas-downloader/internal/pkg/controler"
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/log"
)

var (
	server *http.Server
	mu     sync.Mutex
	// ErrAPIAlreadyInitialized is returned when the API server is already initialized.
	ErrAPIAlreadyInitialized = errors.New("API server already initialized")
)

// StatusFunc reports the current status of the run
type StatusFunc func() controler.Status

// Start begins serving HTTP requests on addr in a separate goroutine.
func Start(addr string, status StatusFunc) error {
	mu.Lock()
	defer mu.Unlock()

	if server != nil {
		return ErrAPIAlreadyInitialized
	}

	logger := log.NewFieldedLogger(&log.Fields{
		"component": "api",
	})

	mux := http.NewServeMux()
	registerRoutes(mux, status)

	server = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func(srv *http.Server) {
		logger.Info("starting API server", "addr", srv.Addr)
		// ListenAndServe returns http.ErrServerClosed when Shutdown is called.
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("API server stopped", "err", err)
		}
	}(server)

	return nil
}

// Stop gracefully shuts down the server within the provided timeout.
func Stop(timeout time.Duration) error {
	mu.Lock()
	defer mu.Unlock()

	if server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := server.Shutdown(ctx)
	server = nil

	return err
}
