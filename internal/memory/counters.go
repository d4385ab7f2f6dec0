package memory

import "sync/atomic"

type counters struct {
	hits         atomic.Int64
	misses       atomic.Int64
	expired      atomic.Int64
	evictedItems atomic.Int64
	evictedBytes atomic.Int64
	rejected     atomic.Int64
}

func newCounters() *counters {
	return &counters{}
}

func (c *counters) snapshot() (hits, misses, expired, evictedItems, evictedBytes, rejected int64) {
	return c.hits.Load(), c.misses.Load(), c.expired.Load(),
		c.evictedItems.Load(), c.evictedBytes.Load(), c.rejected.Load()
}
