package rate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestJitter_EmitsTokens verifies the limiter emits tokens at all.
func TestJitter_EmitsTokens(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	j := NewJitter(ctx, 10)
	require.NotNil(t, j)

	select {
	case <-j.Chan():
	case <-time.After(time.Second):
		t.Fatal("jitter should emit tokens")
	}
}

// TestJitter_TakeReturns verifies Take does not block forever.
func TestJitter_TakeReturns(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	j := NewJitter(ctx, 10)

	done := make(chan struct{})
	go func() {
		j.Take()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Take should not block forever")
	}
}

// TestJitter_ClosesOnCancel verifies the token channel closes with the context.
func TestJitter_ClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	j := NewJitter(ctx, 100)

	cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-j.Chan():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel should close after context cancel")
		}
	}
}
