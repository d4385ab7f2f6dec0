package disk

import (
	"encoding/binary"
	"encoding/json"
)

// Collection names inside the store file. Each data bucket is paired with a
// storedAt-ordered index bucket so cleanup can range-scan oldest first.
const (
	generalBucket    = "general-cache"
	generalIdxBucket = "general-cache-ts"
	resultsBucket    = "computation-results"
	resultsIdxBucket = "computation-results-ts"
)

// Record is the durable form of a general-collection entry.
type Record struct {
	Key      string          `json:"key"`
	Value    json.RawMessage `json:"value"`
	Category string          `json:"category"`
	StoredAt int64           `json:"stored_at"` // unix nanoseconds
	Size     int64           `json:"size"`
}

// ResultRecord is the durable form of a computation result. Key and
// ContentHash are both derived from the computation's input, so every call
// site producing the same input shares one slot.
type ResultRecord struct {
	Key         string          `json:"key"` // "result-" + ContentHash
	ContentHash string          `json:"content_hash"`
	Input       json.RawMessage `json:"input"`
	Result      json.RawMessage `json:"result"`
	Meta        json.RawMessage `json:"meta,omitempty"`
	StoredAt    int64           `json:"stored_at"` // unix nanoseconds
	Size        int64           `json:"size"`
}

// tsKey builds a timestamp-index key: big-endian nanoseconds followed by
// the primary key, so a cursor walks records oldest first and two records
// stored in the same nanosecond cannot collide.
func tsKey(storedAt int64, key string) []byte {
	b := make([]byte, 8+len(key))
	binary.BigEndian.PutUint64(b, uint64(storedAt))
	copy(b[8:], key)
	return b
}

// tsKeyAt extracts the timestamp part of an index key.
func tsKeyAt(b []byte) int64 {
	if len(b) < 8 {
		return 0
	}
	return int64(binary.BigEndian.Uint64(b[:8]))
}
