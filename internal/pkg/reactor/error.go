package reactor

import (
	"errors"
	"fmt"
)

var (
	// ErrNegativeInFlight is raised when a phase counter is decremented below zero
	ErrNegativeInFlight = errors.New("phase in-flight counter went negative")
	// ErrPhaseDrained is raised when a unit is forked on a phase whose barrier already fired
	ErrPhaseDrained = errors.New("fork on a drained phase")
	// ErrPhaseAlreadyRun is returned when Run is called twice on the same phase
	ErrPhaseAlreadyRun = errors.New("phase already run")
	// ErrUnitPanicked wraps the value recovered from a panicking unit
	ErrUnitPanicked = errors.New("unit panicked")
)

// UnitError is an error absorbed at the fork boundary
type UnitError struct {
	Phase string
	Unit  string
	Err   error
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("%s/%s: %v", e.Phase, e.Unit, e.Err)
}

func (e *UnitError) Unwrap() error {
	return e.Err
}
