package log

import "errors"

var (
	// ErrLoggerAlreadyInitialized is the error returned when the logger is already initialized
	ErrLoggerAlreadyInitialized = errors.New("logger already initialized")
	// ErrInvalidLevel is the error returned when the configured level is unknown
	ErrInvalidLevel = errors.New("invalid log level")
)
