package layercache

import "errors"

var (
	// ErrSerialization marks a value that cannot be serialized for storage
	// or hashing. It never crosses a tier boundary: callers see a false
	// return while the diagnostic is logged.
	ErrSerialization = errors.New("layercache: value is not serializable")

	// ErrStorageUnavailable marks a durable substrate that is missing or
	// failed to open. The manager downgrades to memory-only mode instead
	// of failing loudly.
	ErrStorageUnavailable = errors.New("layercache: persistent store unavailable")
)
