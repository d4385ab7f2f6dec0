package telemetry

import (
	"context"
	"log/slog"
	"time"

	"github.com/mkovalev/go-layer-cache/config"
	"github.com/mkovalev/go-layer-cache/internal/disk"
	"github.com/mkovalev/go-layer-cache/internal/memory"
	"github.com/mkovalev/go-layer-cache/internal/shared/bytes"
)

type Logger interface {
	Interval() time.Duration
	Close() error
}

type Logs struct {
	ctx      context.Context
	cancel   context.CancelFunc
	cfg      *config.Cache
	logger   *slog.Logger
	mem      *memory.Tier
	disk     *disk.Store
	interval time.Duration
}

func New(
	ctx context.Context,
	cfg *config.Cache,
	logger *slog.Logger,
	mem *memory.Tier,
	disk *disk.Store,
) *Logs {
	ctx, cancel := context.WithCancel(ctx)
	l := &Logs{
		ctx:    ctx,
		cancel: cancel,
		cfg:    cfg,
		logger: logger,
		mem:    mem,
		disk:   disk,
	}
	if cfg.Telemetry.Enabled() {
		l.interval = cfg.Telemetry.LogsInterval
	}
	return l.run()
}

func (l *Logs) Interval() time.Duration {
	return l.interval
}

func (l *Logs) Close() error {
	l.cancel()
	return nil
}

func (l *Logs) run() *Logs {
	if l.cfg.Telemetry.Enabled() {
		go l.loop()
	}
	return l
}

func (l *Logs) loop() {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	capacity := bytes.FmtMem(uint64(l.cfg.Memory.CapacityBytes))

	s := newSampler(l.mem, l.disk)
	prev := s.snapshot()

	for {
		select {
		case <-l.ctx.Done():
			return

		case <-ticker.C:
			cur := s.snapshot()
			d := deltaSnapshot(prev, cur)
			prev = cur

			common := []any{"interval", l.interval.String()}
			st := l.mem.Stats()

			l.logger.Info("memory_tier",
				append(common,
					"hits", int64(d.memHits),
					"misses", int64(d.memMisses),
					"expired", int64(d.memExpired),
					"evicted_items", int64(d.memEvictedItems),
					"evicted_bytes", bytes.FmtMem(d.memEvictedBytes),
					"rejected", int64(d.memRejected),
				)...,
			)

			if l.disk != nil {
				l.logger.Info("persistent_tier",
					append(common,
						"writes", int64(d.diskWrites),
						"hits", int64(d.diskHits),
						"misses", int64(d.diskMisses),
						"expired", int64(d.diskExpired),
						"errors", int64(d.diskErrors),
						"sweeps", int64(d.sweeps),
						"sweep_failures", int64(d.sweepFailures),
						"swept_records", int64(d.sweptRecords),
						"result_trims", int64(d.resultTrims),
					)...,
				)
			}

			l.logger.Info("storage",
				append(common,
					"size", bytes.FmtMem(uint64(st.BytesUsed)),
					"entries", st.Entries,
					"capacity", capacity,
					"utilization_percent", st.UtilizationPercent,
				)...,
			)
		}
	}
}
