package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied by AdjustConfig when a knob is left at its zero value.
// These are tuning values, not protocol constants.
const (
	DefaultMemoryCapacityBytes = 50 << 20 // 50 MiB
	DefaultMemoryTTL           = 5 * time.Minute
	DefaultMaxItemFraction     = 0.1

	DefaultDiskTTL      = 24 * time.Hour
	DefaultSweepsPerSec = 2

	DefaultResultTTL  = time.Hour
	DefaultMaxResults = 1000
)

// Cache groups configuration of all cache tiers.
// Optional tiers are disabled by setting their sub-config to nil.
type Cache struct {
	// Memory configures the bounded in-memory tier. Always present.
	Memory MemoryCfg `yaml:"memory"`

	// Disk configures the durable persistent tier.
	// If nil, the manager runs in memory-only mode.
	Disk *DiskCfg `yaml:"disk"`

	// Results configures the content-addressed computation result cache.
	// It shares the persistent tier's storage engine, so it requires Disk.
	// If nil, computation result caching is unavailable.
	Results *ResultsCfg `yaml:"results"`

	// Telemetry configures periodic stats logging.
	// If nil, no telemetry loop is started.
	Telemetry *TelemetryCfg `yaml:"telemetry"`
}

func (cfg *Cache) AdjustConfig() {
	if cfg.Memory.CapacityBytes <= 0 {
		cfg.Memory.CapacityBytes = DefaultMemoryCapacityBytes
	}
	if cfg.Memory.TTL <= 0 {
		cfg.Memory.TTL = DefaultMemoryTTL
	}
	if cfg.Memory.MaxItemFraction <= 0 || cfg.Memory.MaxItemFraction > 1 {
		cfg.Memory.MaxItemFraction = DefaultMaxItemFraction
	}
	cfg.Memory.MaxItemBytes = int64(float64(cfg.Memory.CapacityBytes) * cfg.Memory.MaxItemFraction)

	if cfg.Disk.Enabled() {
		if cfg.Disk.TTL <= 0 {
			cfg.Disk.TTL = DefaultDiskTTL
		}
		if cfg.Disk.SweepsPerSec <= 0 {
			cfg.Disk.SweepsPerSec = DefaultSweepsPerSec
		}
	}

	if cfg.Results.Enabled() {
		if cfg.Results.TTL <= 0 {
			cfg.Results.TTL = DefaultResultTTL
		}
		if cfg.Results.MaxEntries <= 0 {
			cfg.Results.MaxEntries = DefaultMaxResults
		}
	}
}

func LoadConfig(path string) (*Cache, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config yaml file %s: %w", path, err)
	}

	var cfg *Cache
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml from %s: %w", path, err)
	}
	cfg.AdjustConfig()

	return cfg, nil
}
