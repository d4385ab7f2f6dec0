package config

import "time"

type MemoryCfg struct {
	// CapacityBytes bounds the total payload size held by the in-memory tier.
	CapacityBytes int64 `yaml:"capacity"`

	// TTL is the maximum age of an in-memory entry. Expired entries are
	// dropped lazily when read; this tier has no background sweep.
	TTL time.Duration `yaml:"ttl"`

	// MaxItemFraction caps a single payload relative to CapacityBytes so
	// one item can never dominate the tier.
	//
	// Example:
	//   MaxItemFraction: 0.1 // reject payloads above 10% of capacity
	MaxItemFraction float64 `yaml:"max_item_fraction"`

	// MaxItemBytes is derived during initialization from CapacityBytes and
	// MaxItemFraction. It is not read from YAML.
	MaxItemBytes int64 // virtual: computed during init (bytes)
}
