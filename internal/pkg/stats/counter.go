package stats

import "sync/atomic"

// counter is a signed atomic counter, usable as a total or as a gauge
type counter struct {
	count atomic.Int64
}

func (c *counter) add(step int64) {
	c.count.Add(step)
}

func (c *counter) get() int64 {
	return c.count.Load()
}

func (c *counter) reset() {
	c.count.Store(0)
}
