package telemetry

import (
	"github.com/mkovalev/go-layer-cache/internal/disk"
	"github.com/mkovalev/go-layer-cache/internal/memory"
)

type sampler struct {
	mem  *memory.Tier
	disk *disk.Store
}

func newSampler(mem *memory.Tier, disk *disk.Store) sampler {
	return sampler{mem: mem, disk: disk}
}

// snapshot holds cumulative counters (monotonic).
type snapshot struct {
	memHits         uint64
	memMisses       uint64
	memExpired      uint64
	memEvictedItems uint64
	memEvictedBytes uint64
	memRejected     uint64

	diskWrites    uint64
	diskHits      uint64
	diskMisses    uint64
	diskExpired   uint64
	diskErrors    uint64
	sweeps        uint64
	sweepFailures uint64
	sweptRecords  uint64
	resultTrims   uint64
}

func (s sampler) snapshot() snapshot {
	hits, misses, expired, evictedItems, evictedBytes, rejected := s.mem.Metrics()

	snap := snapshot{
		memHits:         uint64(max(hits, 0)),
		memMisses:       uint64(max(misses, 0)),
		memExpired:      uint64(max(expired, 0)),
		memEvictedItems: uint64(max(evictedItems, 0)),
		memEvictedBytes: uint64(max(evictedBytes, 0)),
		memRejected:     uint64(max(rejected, 0)),
	}

	if s.disk != nil {
		writes, dHits, dMisses, dExpired, errs, sweeps, failures, swept := s.disk.Metrics()
		snap.diskWrites = uint64(max(writes, 0))
		snap.diskHits = uint64(max(dHits, 0))
		snap.diskMisses = uint64(max(dMisses, 0))
		snap.diskExpired = uint64(max(dExpired, 0))
		snap.diskErrors = uint64(max(errs, 0))
		snap.sweeps = uint64(max(sweeps, 0))
		snap.sweepFailures = uint64(max(failures, 0))
		snap.sweptRecords = uint64(max(swept, 0))
		snap.resultTrims = uint64(max(s.disk.ResultTrims(), 0))
	}

	return snap
}

// deltaSnapshot converts cumulative snapshots to per-interval deltas.
// If counters reset (cur < prev), it treats cur as the delta.
func deltaSnapshot(prev, cur snapshot) snapshot {
	return snapshot{
		memHits:         delta(prev.memHits, cur.memHits),
		memMisses:       delta(prev.memMisses, cur.memMisses),
		memExpired:      delta(prev.memExpired, cur.memExpired),
		memEvictedItems: delta(prev.memEvictedItems, cur.memEvictedItems),
		memEvictedBytes: delta(prev.memEvictedBytes, cur.memEvictedBytes),
		memRejected:     delta(prev.memRejected, cur.memRejected),

		diskWrites:    delta(prev.diskWrites, cur.diskWrites),
		diskHits:      delta(prev.diskHits, cur.diskHits),
		diskMisses:    delta(prev.diskMisses, cur.diskMisses),
		diskExpired:   delta(prev.diskExpired, cur.diskExpired),
		diskErrors:    delta(prev.diskErrors, cur.diskErrors),
		sweeps:        delta(prev.sweeps, cur.sweeps),
		sweepFailures: delta(prev.sweepFailures, cur.sweepFailures),
		sweptRecords:  delta(prev.sweptRecords, cur.sweptRecords),
		resultTrims:   delta(prev.resultTrims, cur.resultTrims),
	}
}

func delta(prev, cur uint64) uint64 {
	if cur >= prev {
		return cur - prev
	}
	return cur
}
