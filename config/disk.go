package config

import "time"

type DiskCfg struct {
	// Path is the filesystem location of the store file.
	// The parent directory must exist and be writable.
	Path string `yaml:"path"`

	// TTL is the maximum age of a durable record in the general collection.
	// Expired records are dropped lazily on read and removed in bulk by
	// background cleanup sweeps.
	TTL time.Duration `yaml:"ttl"`

	// SweepsPerSec limits how many cleanup sweeps may run per second.
	// Every write schedules a sweep, so a hot write path would otherwise
	// keep the store busy with back-to-back scans.
	SweepsPerSec int `yaml:"sweeps_per_sec"`
}

func (cfg *DiskCfg) Enabled() bool {
	return cfg != nil
}
