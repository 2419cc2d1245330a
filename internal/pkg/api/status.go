package api

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/canvas-downloader/canvas-downloader/internal/pkg/controler"
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/stats"
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/utils"
)

// StatusResponse represents the structure of the status API response
type StatusResponse struct {
	Role            string            `json:"role"`
	Version         string            `json:"version"`
	Host            string            `json:"host"`
	State           string            `json:"state"`
	Run             *controler.Status `json:"run,omitempty"`
	StartTime       string            `json:"start_time"`
	ItemsDiscovered int64             `json:"items_discovered"`
	BytesDownloaded int64             `json:"bytes_downloaded"`
	Stats           map[string]any    `json:"stats"`
}

var startTime = time.Now()

// statusHandler handles GET requests to /status
func statusHandler(status StatusFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}

		response := StatusResponse{
			Role:            "canvas-downloader",
			Version:         utils.GetVersion().Version,
			Host:            hostname,
			StartTime:       startTime.Format(time.RFC3339),
			ItemsDiscovered: stats.ItemsDiscoveredGet(),
			BytesDownloaded: stats.BytesDownloadedGet(),
			Stats:           stats.GetMap(),
		}
		if status != nil {
			run := status()
			response.State = run.State
			response.Run = &run
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			http.Error(w, "Failed to encode JSON", http.StatusInternalServerError)
			return
		}
	}
}
