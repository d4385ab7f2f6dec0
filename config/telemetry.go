package config

import "time"

type TelemetryCfg struct {
	// LogsInterval defines how often the telemetry loop reports tier
	// stats and per-interval counter deltas.
	LogsInterval time.Duration `yaml:"logs_interval"`
}

func (cfg *TelemetryCfg) Enabled() bool {
	return cfg != nil && cfg.LogsInterval > 0
}
