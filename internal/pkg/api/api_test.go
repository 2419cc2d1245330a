package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/canvas-downloader/canvas-downloader/internal/pkg/controler"
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/reactor"
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	require.NoError(t, stats.Init(&stats.Config{Prometheus: true, Job: "test"}))
	t.Cleanup(stats.Reset)

	stats.ItemsDiscoveredAdd(3)
	stats.BytesDownloadedAdd(1024)

	mux := http.NewServeMux()
	registerRoutes(mux, func() controler.Status {
		return controler.Status{
			RunID: "run-1",
			State: "transfer running",
			Phase: &reactor.State{Name: "transfer", InFlight: 2, Forked: 5, Completed: 3},
			Gate:  &controler.GateStatus{Capacity: 8, InUse: 2, Peak: 4},
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status StatusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, "canvas-downloader", status.Role)
	assert.Equal(t, "transfer running", status.State)
	require.NotNil(t, status.Run)
	assert.Equal(t, "run-1", status.Run.RunID)
	require.NotNil(t, status.Run.Phase)
	assert.Equal(t, int64(2), status.Run.Phase.InFlight)
	assert.Equal(t, uint64(5), status.Run.Phase.Forked)
	require.NotNil(t, status.Run.Gate)
	assert.Equal(t, 4, status.Run.Gate.Peak)
	assert.Equal(t, int64(3), status.ItemsDiscovered)
	assert.Equal(t, int64(1024), status.BytesDownloaded)

	post, err := http.Post(srv.URL+"/status", "text/plain", strings.NewReader(""))
	require.NoError(t, err)
	post.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, post.StatusCode)

	metrics, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	metrics.Body.Close()
	assert.Equal(t, http.StatusOK, metrics.StatusCode)
}

func TestMetricsDisabled(t *testing.T) {
	require.NoError(t, stats.Init(&stats.Config{}))
	t.Cleanup(stats.Reset)

	mux := http.NewServeMux()
	registerRoutes(mux, nil)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
