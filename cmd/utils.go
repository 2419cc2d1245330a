package cmd

import (
	"fmt"
	"net/http"

	"github.com/canvas-downloader/canvas-downloader/internal/pkg/canvas"
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/config"
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/log"
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/panopto"
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/stats"
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/utils"
)

func startLogging(cfg *config.Config) error {
	err := log.Start(&log.Config{
		Level:         cfg.LogLevel,
		JSON:          cfg.LogJSON,
		NoStdout:      cfg.NoStdoutLogging,
		FileOutputDir: cfg.LogFileOutputDir,
		FilePrefix:    cfg.LogFilePrefix,
		FileRotation:  cfg.LogFileRotation,
	})
	if err != nil {
		return fmt.Errorf("error starting logger: %w", err)
	}

	return nil
}

func startStats(cfg *config.Config, job string) error {
	return stats.Init(&stats.Config{
		Prometheus:       cfg.MetricsAddr != "",
		PrometheusPrefix: "canvas_downloader_",
		Job:              job,
	})
}

func newClient(cfg *config.Config, gate canvas.Admitter) (*canvas.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = cfg.HTTPTimeout

	opts := []canvas.Option{
		canvas.WithHTTPClient(&http.Client{Transport: transport}),
		canvas.WithRetryPolicy(retryPolicy(cfg)),
		canvas.WithTimeout(cfg.HTTPTimeout),
		canvas.WithPerPage(cfg.PerPage),
	}
	if gate != nil {
		opts = append(opts, canvas.WithGate(gate))
	}

	return canvas.NewClient(cfg.CanvasURL, cfg.CanvasToken, opts...)
}

func retryPolicy(cfg *config.Config) canvas.RetryPolicy {
	return canvas.RetryPolicy{
		MaxAttempts: cfg.MaxRetry,
		BaseDelay:   cfg.RetryBaseDelay,
		MaxDelay:    cfg.RetryMaxDelay,
	}
}

// panoptoConfig returns nil when recordings are not downloaded
func panoptoConfig(cfg *config.Config, gate canvas.Admitter) *panopto.Config {
	if cfg.PanoptoToolID <= 0 {
		return nil
	}

	return &panopto.Config{
		ToolID:    cfg.PanoptoToolID,
		Gate:      gate,
		Timeout:   cfg.HTTPTimeout,
		Retry:     retryPolicy(cfg),
		UserAgent: utils.UserAgent(),
	}
}
