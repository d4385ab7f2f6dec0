package layercache

// MemoryStats is a point-in-time view of the in-memory tier.
type MemoryStats struct {
	Entries            int64
	BytesUsed          int64
	CapacityBytes      int64
	UtilizationPercent float64
}

// Stats describes the manager as a whole: memory occupancy plus whether
// the durable tier and the result cache are serving.
type Stats struct {
	Memory               MemoryStats
	Initialized          bool
	ResultCacheAvailable bool
}
