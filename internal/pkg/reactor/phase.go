// Package reactor runs dynamically growing trees of work units.
//
// A Phase tracks every unit forked on it with an in-flight counter: the
// counter is incremented before a unit is scheduled and decremented once
// the unit returns, after the unit has forked its own children. The phase
// barrier fires exactly once, on the decrement that brings the counter back
// to zero. Errors and panics raised by a unit are absorbed at the fork
// boundary and never reach siblings or the barrier.
package reactor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/canvas-downloader/canvas-downloader/internal/pkg/log"
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/stats"
)

// Unit is one asynchronous piece of work belonging to a phase.
// Units receive their phase so they can fork children on it.
type Unit func(ctx context.Context, phase *Phase) error

// Task is a named root unit handed to Run
type Task struct {
	Name string
	Unit Unit
}

// Phase is the scope of one traversal or transfer batch.
// It must not be reused once its barrier fired.
type Phase struct {
	name string
	gate *Gate
	ctx  context.Context

	inFlight  atomic.Int64
	forked    atomic.Uint64
	completed atomic.Uint64
	fires     atomic.Uint64
	started   atomic.Bool
	drained   atomic.Bool
	wake      chan struct{}

	errMu  sync.Mutex
	errors []*UnitError

	logger *log.FieldedLogger
}

// NewPhase creates a fresh phase sharing the given admission gate
func NewPhase(name string, gate *Gate) *Phase {
	return &Phase{
		name: name,
		gate: gate,
		ctx:  context.Background(),
		wake: make(chan struct{}),
		logger: log.NewFieldedLogger(&log.Fields{
			"component": "reactor",
			"phase":     name,
		}),
	}
}

// Run forks the root units and blocks until the phase barrier fires or ctx
// is done. With no roots the barrier fires immediately.
func (p *Phase) Run(ctx context.Context, roots ...Task) error {
	if !p.started.CompareAndSwap(false, true) {
		return ErrPhaseAlreadyRun
	}

	p.ctx = ctx
	p.logger.Debug("phase started", "roots", len(roots))

	// The hold keeps the counter above zero while roots are being forked,
	// so a fast root cannot fire the barrier before its siblings exist.
	p.inFlight.Add(1)
	for _, root := range roots {
		p.Fork(root.Name, root.Unit)
	}
	p.done()

	if err := p.Wait(ctx); err != nil {
		return err
	}

	p.logger.Debug("phase drained", "forked", p.Forked(), "completed", p.Completed(), "errors", len(p.Errors()))
	return nil
}

// Fork schedules unit on the phase. It must be called from Run's roots or
// from a unit of the same phase that has not returned yet.
func (p *Phase) Fork(name string, unit Unit) {
	if p.drained.Load() {
		panic(fmt.Errorf("%w: %s/%s", ErrPhaseDrained, p.name, name))
	}

	p.inFlight.Add(1)
	p.forked.Add(1)
	stats.UnitsInFlightIncr(p.name)

	go func() {
		defer p.done()
		defer stats.UnitsInFlightDecr(p.name)
		defer p.completed.Add(1)

		if err := p.execute(name, unit); err != nil {
			p.absorb(name, err)
		}
	}()
}

// execute runs unit, turning a panic into an error
func (p *Phase) execute(name string, unit Unit) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrUnitPanicked, r)
		}
	}()

	return unit(p.ctx, p)
}

func (p *Phase) absorb(name string, err error) {
	unitErr := &UnitError{Phase: p.name, Unit: name, Err: err}

	p.errMu.Lock()
	p.errors = append(p.errors, unitErr)
	p.errMu.Unlock()

	p.logger.Warn("unit failed", "unit", name, "err", err)
}

// done decrements the in-flight counter and fires the barrier on zero
func (p *Phase) done() {
	n := p.inFlight.Add(-1)
	if n < 0 {
		panic(fmt.Errorf("%w: %s", ErrNegativeInFlight, p.name))
	}

	if n == 0 {
		p.drained.Store(true)
		p.fires.Add(1)
		close(p.wake)
	}
}

// Wait blocks until the barrier fired or ctx is done
func (p *Phase) Wait(ctx context.Context) error {
	select {
	case <-p.wake:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done returns a channel closed when the barrier fires
func (p *Phase) Done() <-chan struct{} {
	return p.wake
}

// Name returns the phase name
func (p *Phase) Name() string { return p.name }

// Gate returns the admission gate shared by the units of the phase
func (p *Phase) Gate() *Gate { return p.gate }

// InFlight returns the number of units forked and not yet completed
func (p *Phase) InFlight() int64 { return p.inFlight.Load() }

// Forked returns the number of units forked so far
func (p *Phase) Forked() uint64 { return p.forked.Load() }

// Completed returns the number of units that returned
func (p *Phase) Completed() uint64 { return p.completed.Load() }

// Fires returns how many times the barrier fired, 0 or 1
func (p *Phase) Fires() uint64 { return p.fires.Load() }

// Errors returns the errors absorbed so far
func (p *Phase) Errors() []*UnitError {
	p.errMu.Lock()
	defer p.errMu.Unlock()

	errs := make([]*UnitError, len(p.errors))
	copy(errs, p.errors)
	return errs
}
