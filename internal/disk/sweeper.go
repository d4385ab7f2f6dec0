package disk

import (
	"context"

	"github.com/mkovalev/go-layer-cache/internal/shared/rate"
	"github.com/rs/zerolog/log"
)

// sweeper runs cleanup sweeps in the background. Writes kick it instead of
// sweeping inline, and a rate limiter keeps a hot write path from turning
// into back-to-back scans. Failures are counted and logged, never returned
// to the write that scheduled the sweep.
type sweeper struct {
	ctx    context.Context
	store  *Store
	kickCh chan struct{}
	jitter *rate.Jitter
	done   chan struct{}
}

func newSweeper(ctx context.Context, s *Store) *sweeper {
	sw := &sweeper{
		ctx:    ctx,
		store:  s,
		kickCh: make(chan struct{}, 1),
		jitter: rate.NewJitter(ctx, s.cfg.Disk.SweepsPerSec),
		done:   make(chan struct{}),
	}
	go sw.loop()
	return sw
}

// kick schedules a sweep without blocking the caller. A kick while one is
// already pending is absorbed.
func (sw *sweeper) kick() {
	select {
	case sw.kickCh <- struct{}{}:
	default:
	}
}

func (sw *sweeper) loop() {
	defer close(sw.done)

	for {
		select {
		case <-sw.ctx.Done():
			return
		case <-sw.kickCh:
			sw.jitter.Take()
			if sw.ctx.Err() != nil {
				return
			}

			removed, err := sw.store.Cleanup(sw.ctx)
			if err != nil {
				sw.store.counters.sweepFailures.Add(1)
				log.Warn().Err(err).Msg("cache sweep failed")
				continue
			}

			sw.store.counters.sweeps.Add(1)
			if removed > 0 {
				sw.store.counters.sweptRecords.Add(int64(removed))
				log.Info().Int("removed", removed).Msg("cache sweep finished")
			}
		}
	}
}
