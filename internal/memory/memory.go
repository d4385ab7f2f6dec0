// Package memory implements the bounded in-memory tier: a size- and
// TTL-limited key/value store with least-recently-used eviction driven by a
// monotonic access counter.
package memory

import (
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/mkovalev/go-layer-cache/config"
	"github.com/mkovalev/go-layer-cache/internal/shared/bytes"
)

type entry struct {
	payload  []byte
	sum      uint64 // payload fingerprint, detects identical overwrites
	storedAt time.Time
	size     int64
}

// Stats is a point-in-time view of tier occupancy.
type Stats struct {
	Entries            int64
	BytesUsed          int64
	CapacityBytes      int64
	UtilizationPercent float64
}

// Tier owns its entries exclusively. Every key present in entries has
// exactly one access-order tick; ticks are unique and totally ordered, so
// the eviction victim is always well defined.
type Tier struct {
	mu       sync.Mutex
	cfg      *config.Cache
	logger   *slog.Logger
	clock    clock.Clock
	entries  map[string]*entry
	order    map[string]uint64
	tick     uint64
	used     int64
	counters *counters
}

func New(cfg *config.Cache, logger *slog.Logger, clk clock.Clock) *Tier {
	return &Tier{
		cfg:      cfg,
		logger:   logger,
		clock:    clk,
		entries:  make(map[string]*entry),
		order:    make(map[string]uint64),
		counters: newCounters(),
	}
}

// Set stores a payload under key. Payloads above the per-item ceiling are
// rejected with no side effect; otherwise least-recently-used entries are
// evicted until the payload fits.
func (t *Tier) Set(key string, payload []byte) bool {
	size := int64(len(payload))
	if size > t.cfg.Memory.MaxItemBytes {
		t.counters.rejected.Add(1)
		t.logger.Warn("memory: payload exceeds per-item ceiling",
			"key", key, "size", size, "ceiling", t.cfg.Memory.MaxItemBytes)
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if old, ok := t.entries[key]; ok {
		if bytes.IsSamePayload(payload, old.size, old.sum) {
			// identical payload, refresh age and recency only
			old.storedAt = t.clock.Now()
			t.touch(key)
			return true
		}
		t.used -= old.size
		delete(t.entries, key)
		delete(t.order, key)
	}

	for t.used+size > t.cfg.Memory.CapacityBytes {
		if !t.evictLRU() {
			// nothing left to evict and still no room
			t.counters.rejected.Add(1)
			return false
		}
	}

	t.entries[key] = &entry{
		payload:  payload,
		sum:      bytes.Fingerprint(payload),
		storedAt: t.clock.Now(),
		size:     size,
	}
	t.used += size
	t.touch(key)
	return true
}

// Get returns the payload for key, dropping the entry first when its TTL
// has elapsed. Expiry is lazy: this tier has no background sweep.
func (t *Tier) Get(key string) ([]byte, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[key]
	if !ok {
		t.counters.misses.Add(1)
		return nil, false
	}

	if t.cfg.Memory.TTL > 0 && t.clock.Now().Sub(e.storedAt) > t.cfg.Memory.TTL {
		t.removeLocked(key, e)
		t.counters.expired.Add(1)
		t.counters.misses.Add(1)
		return nil, false
	}

	t.touch(key)
	t.counters.hits.Add(1)
	return e.payload, true
}

func (t *Tier) Delete(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[key]
	if !ok {
		return false
	}
	t.removeLocked(key, e)
	return true
}

func (t *Tier) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = make(map[string]*entry)
	t.order = make(map[string]uint64)
	t.tick = 0
	t.used = 0
}

func (t *Tier) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	capacity := t.cfg.Memory.CapacityBytes
	var utilization float64
	if capacity > 0 {
		utilization = float64(t.used) / float64(capacity) * 100
	}
	return Stats{
		Entries:            int64(len(t.entries)),
		BytesUsed:          t.used,
		CapacityBytes:      capacity,
		UtilizationPercent: utilization,
	}
}

func (t *Tier) Metrics() (hits, misses, expired, evictedItems, evictedBytes, rejected int64) {
	return t.counters.snapshot()
}

/**
 * Private API. Callers below hold t.mu.
 */

func (t *Tier) touch(key string) {
	t.tick++
	t.order[key] = t.tick
}

func (t *Tier) removeLocked(key string, e *entry) {
	delete(t.entries, key)
	delete(t.order, key)
	t.used -= e.size
}

// evictLRU drops the entry with the smallest access tick. Ticks are unique,
// so no tie-break is needed. Returns false when the tier is empty.
func (t *Tier) evictLRU() bool {
	var (
		victim   string
		minTick  uint64
		haveBest bool
	)
	for key, tick := range t.order {
		if !haveBest || tick < minTick {
			victim, minTick, haveBest = key, tick, true
		}
	}
	if !haveBest {
		return false
	}

	e := t.entries[victim]
	t.removeLocked(victim, e)
	t.counters.evictedItems.Add(1)
	t.counters.evictedBytes.Add(e.size)
	return true
}
