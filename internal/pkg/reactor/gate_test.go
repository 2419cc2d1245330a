package reactor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate_NeverExceedsCapacity(t *testing.T) {
	for _, capacity := range []int{1, 3, 8} {
		capacity := capacity
		t.Run(fmt.Sprintf("capacity-%d", capacity), func(t *testing.T) {
			gate := NewGate(capacity)

			var (
				current  atomic.Int64
				observed atomic.Int64
				wg       sync.WaitGroup
			)

			for i := 0; i < 200; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()

					if !assert.NoError(t, gate.Acquire(context.Background())) {
						return
					}
					defer gate.Release()

					n := current.Add(1)
					for {
						prev := observed.Load()
						if n <= prev || observed.CompareAndSwap(prev, n) {
							break
						}
					}
					time.Sleep(100 * time.Microsecond)
					current.Add(-1)
				}()
			}
			wg.Wait()

			assert.LessOrEqual(t, observed.Load(), int64(capacity))
			assert.LessOrEqual(t, gate.Peak(), capacity)
			assert.Equal(t, 0, gate.InUse())
		})
	}
}

func TestGate_DefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultGateCapacity, NewGate(0).Capacity())
	assert.Equal(t, 8, DefaultGateCapacity)
}

func TestGate_AcquireHonoursContext(t *testing.T) {
	gate := NewGate(1)
	require.NoError(t, gate.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, gate.Acquire(ctx), context.DeadlineExceeded)
	assert.Equal(t, 1, gate.InUse())

	gate.Release()
	assert.Equal(t, 0, gate.InUse())
}

func TestGate_NilAdmitsEverything(t *testing.T) {
	var gate *Gate

	require.NoError(t, gate.Acquire(context.Background()))
	gate.Release()
	assert.Equal(t, 0, gate.Capacity())
}

func TestGate_SharedByPhaseUnits(t *testing.T) {
	gate := NewGate(4)
	var calls atomic.Int64

	p := NewPhase("transfer", gate)
	runPhase(t, p, Task{Name: "root", Unit: func(ctx context.Context, phase *Phase) error {
		for i := 0; i < 64; i++ {
			phase.Fork("download", func(ctx context.Context, phase *Phase) error {
				if err := phase.Gate().Acquire(ctx); err != nil {
					return err
				}
				defer phase.Gate().Release()

				calls.Add(1)
				time.Sleep(50 * time.Microsecond)
				return nil
			})
		}
		return nil
	}})

	assertDrained(t, p)
	assert.Equal(t, int64(64), calls.Load())
	assert.LessOrEqual(t, gate.Peak(), 4)
}
