// Package stats keeps the process-wide run counters and mirrors them
// to prometheus when enabled. Every helper is a no-op until Init is called.
package stats

import (
	"sync"
	"time"

	"github.com/paulbellamy/ratecounter"
)

// Config holds the stats configuration
type Config struct {
	Prometheus       bool   // Prometheus enables the prometheus mirrors
	PrometheusPrefix string // PrometheusPrefix is prepended to every metric name
	Job              string // Job is the run identifier used as a metric label
}

type stats struct {
	Requests        *counter
	RequestsRate    *ratecounter.RateCounter
	Retries         *counter
	ItemsDiscovered *counter
	Downloaded      *counter
	SkippedIgnored  *counter
	SkippedUpToDate *counter
	Failed          *counter
	BytesDownloaded *counter
	BytesRate       *ratecounter.RateCounter
	UnitsInFlight   *counter
	GateInUse       *counter
	StartTime       time.Time
}

var (
	globalStats *stats
	statsMu     sync.RWMutex
	job         string
)

// Init initializes the global stats.
// It can only be called once until Reset is called.
func Init(cfg *Config) error {
	statsMu.Lock()
	defer statsMu.Unlock()

	if globalStats != nil {
		return ErrStatsAlreadyInitialized
	}

	if cfg == nil {
		cfg = &Config{}
	}

	globalStats = &stats{
		Requests:        &counter{},
		RequestsRate:    ratecounter.NewRateCounter(time.Second),
		Retries:         &counter{},
		ItemsDiscovered: &counter{},
		Downloaded:      &counter{},
		SkippedIgnored:  &counter{},
		SkippedUpToDate: &counter{},
		Failed:          &counter{},
		BytesDownloaded: &counter{},
		BytesRate:       ratecounter.NewRateCounter(time.Second),
		UnitsInFlight:   &counter{},
		GateInUse:       &counter{},
		StartTime:       time.Now(),
	}
	job = cfg.Job

	if cfg.Prometheus {
		globalPromStats = newPrometheusStats(cfg.PrometheusPrefix)
		registerPrometheusMetrics()
	}

	return nil
}

// Reset drops the global stats so Init can be called again
func Reset() {
	statsMu.Lock()
	defer statsMu.Unlock()

	globalStats = nil
	globalPromStats = nil
	registry = nil
}

// get returns the global stats, or nil if Init was not called
func get() *stats {
	statsMu.RLock()
	defer statsMu.RUnlock()

	return globalStats
}

// GetMap returns a map of the current stats.
// This is used by the live printer to update the stats table.
func GetMap() map[string]interface{} {
	s := get()
	if s == nil {
		return map[string]interface{}{}
	}

	return map[string]interface{}{
		"Requests":             s.Requests.get(),
		"Requests/s":           s.RequestsRate.Rate(),
		"Retries":              s.Retries.get(),
		"Items discovered":     s.ItemsDiscovered.get(),
		"Downloaded":           s.Downloaded.get(),
		"Skipped (ignored)":    s.SkippedIgnored.get(),
		"Skipped (up to date)": s.SkippedUpToDate.get(),
		"Failed":               s.Failed.get(),
		"Bytes downloaded":     s.BytesDownloaded.get(),
		"Bytes/s":              s.BytesRate.Rate(),
		"Units in flight":      s.UnitsInFlight.get(),
		"Gate tickets in use":  s.GateInUse.get(),
	}
}
