package controler

import "errors"

var (
	// ErrTerminalFailures is returned when at least one item or discovery branch failed
	ErrTerminalFailures = errors.New("terminal failures occurred")
	// ErrInvalidTransition is returned when a phase is started out of order
	ErrInvalidTransition = errors.New("invalid state transition")
)
