package config

import "time"

type ResultsCfg struct {
	// TTL is the maximum age of a stored computation result.
	TTL time.Duration `yaml:"ttl"`

	// MaxEntries is a hard cap on stored results, independent of TTL.
	// Once exceeded, the oldest records are removed until the count is
	// back at the limit, even if they are still fresh.
	MaxEntries int `yaml:"max_entries"`
}

func (cfg *ResultsCfg) Enabled() bool {
	return cfg != nil
}
