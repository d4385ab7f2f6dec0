package disk

import "sync/atomic"

type counters struct {
	writes        atomic.Int64
	hits          atomic.Int64
	misses        atomic.Int64
	expired       atomic.Int64
	errors        atomic.Int64
	sweeps        atomic.Int64
	sweepFailures atomic.Int64
	sweptRecords  atomic.Int64
	resultTrims   atomic.Int64
}

func newCounters() *counters {
	return &counters{}
}

func (c *counters) snapshot() (writes, hits, misses, expired, errs, sweeps, sweepFailures, sweptRecords int64) {
	return c.writes.Load(), c.hits.Load(), c.misses.Load(), c.expired.Load(),
		c.errors.Load(), c.sweeps.Load(), c.sweepFailures.Load(), c.sweptRecords.Load()
}

// SweepMetrics exposes sweep outcomes so fire-and-forget cleanup failures
// stay observable.
func (c *counters) sweepSnapshot() (sweeps, failures, removed int64) {
	return c.sweeps.Load(), c.sweepFailures.Load(), c.sweptRecords.Load()
}
