// Package rate smooths bursty background work behind a leaky-bucket limiter.
package rate

import (
	"context"

	"go.uber.org/ratelimit"
)

// Jitter feeds a buffered channel at a bounded rate. The cleanup sweeper
// takes one token per sweep, so scheduling a sweep after every write cannot
// translate into back-to-back scans of the durable store.
type Jitter struct {
	ch    chan struct{}
	l     ratelimit.Limiter
	limit int
}

func NewJitter(ctx context.Context, limit int) *Jitter {
	burst := int(float64(limit) * 0.1)
	if burst < 1 {
		burst = 1
	}
	j := &Jitter{
		limit: limit,
		ch:    make(chan struct{}, burst),
		l:     ratelimit.New(limit),
	}
	go j.feed(ctx)
	return j
}

func (j *Jitter) feed(ctx context.Context) {
	defer close(j.ch)
	for {
		j.l.Take()
		select {
		case <-ctx.Done():
			return
		case j.ch <- struct{}{}:
		}
	}
}

// Take blocks until a token is available. After the context is canceled the
// channel is closed and Take returns immediately.
func (j *Jitter) Take() {
	<-j.ch
}

func (j *Jitter) Chan() <-chan struct{} {
	return j.ch
}
