package bytes

import (
	"fmt"

	"github.com/zeebo/xxh3"
)

// Fingerprint returns a fast non-cryptographic digest of a payload.
// The memory tier stores it per entry so an overwrite with an identical
// payload can be detected without a byte comparison.
func Fingerprint(b []byte) uint64 {
	return xxh3.Hash(b)
}

// IsSamePayload reports whether b matches a previously fingerprinted
// payload of the given length.
func IsSamePayload(b []byte, length int64, sum uint64) bool {
	return int64(len(b)) == length && xxh3.Hash(b) == sum
}

func FmtMem(bytes uint64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		g := bytes / GB
		rem := bytes % GB
		return fmt.Sprintf("%dGB %dMB", g, rem/MB)
	case bytes >= MB:
		m := bytes / MB
		rem := bytes % MB
		return fmt.Sprintf("%dMB %dKB", m, rem/KB)
	case bytes >= KB:
		k := bytes / KB
		return fmt.Sprintf("%dKB %dB", k, bytes%KB)
	default:
		return fmt.Sprintf("%dB", bytes)
	}
}
