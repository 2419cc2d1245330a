package stats

import (
	"net/http"

	"github.com/canvas-downloader/canvas-downloader/internal/pkg/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type prometheusStats struct {
	requests        *prometheus.CounterVec
	retries         *prometheus.CounterVec
	itemsDiscovered *prometheus.CounterVec
	transfers       *prometheus.CounterVec
	bytesDownloaded *prometheus.CounterVec
	unitsInFlight   *prometheus.GaugeVec
	gateInUse       *prometheus.GaugeVec
}

var (
	globalPromStats *prometheusStats
	registry        *prometheus.Registry
	version         = utils.GetVersion().Version
)

func newPrometheusStats(prefix string) *prometheusStats {
	return &prometheusStats{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: prefix + "requests_total", Help: "Total number of API and download requests"},
			[]string{"job", "version"},
		),
		retries: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: prefix + "retries_total", Help: "Total number of retried requests"},
			[]string{"job", "version"},
		),
		itemsDiscovered: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: prefix + "items_discovered_total", Help: "Total number of downloadable items discovered"},
			[]string{"job", "version"},
		),
		transfers: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: prefix + "transfers_total", Help: "Total number of transfers by outcome"},
			[]string{"job", "version", "outcome"},
		),
		bytesDownloaded: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: prefix + "bytes_downloaded_total", Help: "Total number of bytes written to disk"},
			[]string{"job", "version"},
		),
		unitsInFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: prefix + "units_in_flight", Help: "Number of forked units not yet completed"},
			[]string{"job", "version", "phase"},
		),
		gateInUse: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: prefix + "gate_in_use", Help: "Number of admission gate tickets held"},
			[]string{"job", "version"},
		),
	}
}

func registerPrometheusMetrics() {
	registry = prometheus.NewRegistry()
	registry.MustRegister(globalPromStats.requests)
	registry.MustRegister(globalPromStats.retries)
	registry.MustRegister(globalPromStats.itemsDiscovered)
	registry.MustRegister(globalPromStats.transfers)
	registry.MustRegister(globalPromStats.bytesDownloaded)
	registry.MustRegister(globalPromStats.unitsInFlight)
	registry.MustRegister(globalPromStats.gateInUse)
}

func promStats() *prometheusStats {
	statsMu.RLock()
	defer statsMu.RUnlock()

	return globalPromStats
}

// PrometheusHandler returns the handler exposing the registered metrics.
// It returns ErrPrometheusDisabled unless Init enabled prometheus.
func PrometheusHandler() (http.Handler, error) {
	statsMu.RLock()
	defer statsMu.RUnlock()

	if registry == nil {
		return nil, ErrPrometheusDisabled
	}

	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), nil
}
