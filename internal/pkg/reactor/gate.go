package reactor

import (
	"context"
	"sync/atomic"

	"github.com/canvas-downloader/canvas-downloader/internal/pkg/stats"
	"github.com/remeh/sizedwaitgroup"
)

// DefaultGateCapacity is the number of concurrent network operations allowed by default
const DefaultGateCapacity = 8

// Gate is a fixed-capacity ticket pool bounding concurrent network operations.
// A nil *Gate admits everything.
type Gate struct {
	swg      sizedwaitgroup.SizedWaitGroup
	capacity int
	inUse    atomic.Int64
	peak     atomic.Int64
}

// NewGate returns a gate with the given capacity, or DefaultGateCapacity if capacity < 1
func NewGate(capacity int) *Gate {
	if capacity < 1 {
		capacity = DefaultGateCapacity
	}

	return &Gate{
		swg:      sizedwaitgroup.New(capacity),
		capacity: capacity,
	}
}

// Acquire blocks until a ticket is available or ctx is done
func (g *Gate) Acquire(ctx context.Context) error {
	if g == nil {
		return nil
	}

	if err := g.swg.AddWithContext(ctx); err != nil {
		return err
	}

	n := g.inUse.Add(1)
	for {
		peak := g.peak.Load()
		if n <= peak || g.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	stats.GateInUseIncr()

	return nil
}

// Release returns a ticket taken by Acquire
func (g *Gate) Release() {
	if g == nil {
		return
	}

	stats.GateInUseDecr()
	g.inUse.Add(-1)
	g.swg.Done()
}

// Capacity returns the number of tickets of the gate
func (g *Gate) Capacity() int {
	if g == nil {
		return 0
	}
	return g.capacity
}

// InUse returns the number of tickets currently held
func (g *Gate) InUse() int {
	if g == nil {
		return 0
	}
	return int(g.inUse.Load())
}

// Peak returns the highest number of tickets ever held at once
func (g *Gate) Peak() int {
	if g == nil {
		return 0
	}
	return int(g.peak.Load())
}
