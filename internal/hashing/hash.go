// Package hashing fingerprints arbitrary configuration values into stable
// content keys.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Sum derives a content key from v. Two values that are deeply equal after
// object-key normalization produce the same key: v is serialized, read back
// into plain maps so declaration order cannot leak into the result, then
// serialized again (map keys are emitted sorted) and digested with SHA-256,
// rendered as lowercase hex.
//
// Values that cannot be serialized (functions, channels, cycles) fail with
// an error; callers must not pass such values.
func Sum(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("serialize value for hashing: %w", err)
	}

	var normalized any
	if err = json.Unmarshal(raw, &normalized); err != nil {
		return "", fmt.Errorf("normalize value for hashing: %w", err)
	}

	canonical, err := json.Marshal(normalized)
	if err != nil {
		return "", fmt.Errorf("canonicalize value for hashing: %w", err)
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
