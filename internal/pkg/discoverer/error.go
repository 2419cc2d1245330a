package discoverer

import "errors"

var (
	// ErrCycle is returned for a node whose key already appears among its ancestors
	ErrCycle = errors.New("cycle in content hierarchy")
	// ErrMaxDepth is returned for a node deeper than the configured maximum
	ErrMaxDepth = errors.New("maximum discovery depth exceeded")
	// ErrAlreadyRun is returned by a second Run on the same Discoverer
	ErrAlreadyRun = errors.New("discoverer already run")
)
