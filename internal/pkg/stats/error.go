package stats

import "errors"

var (
	// ErrStatsAlreadyInitialized is returned by a second call to Init
	ErrStatsAlreadyInitialized = errors.New("stats already initialized")
	// ErrPrometheusDisabled is returned when metrics are requested but no registry was set up
	ErrPrometheusDisabled = errors.New("prometheus metrics are disabled")
)
