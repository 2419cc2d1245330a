package config

import "errors"

var (
	// ErrMissingToken is returned when no Canvas API token is configured
	ErrMissingToken = errors.New("canvas-token is not set")
	// ErrInvalidCanvasURL is returned when canvas-url is not an http(s) URL
	ErrInvalidCanvasURL = errors.New("canvas-url is not a valid http(s) URL")
	// ErrInvalidValue is returned for out of range tunables
	ErrInvalidValue = errors.New("invalid configuration value")
)
