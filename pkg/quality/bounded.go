package quality

import (
	"context"
	"fmt"
	"time"
)

// DefaultTimeout bounds a single scoring call when no timeout is configured.
const DefaultTimeout = 5 * time.Second

// Bounded wraps a Scorer with a per-call timeout so that slow scorers cannot
// stall version creation. On expiry the caller receives Neutral() and the
// context error; the underlying call is abandoned.
type Bounded struct {
	inner   Scorer
	timeout time.Duration
}

// NewBounded wraps inner with the given timeout. Non-positive timeouts fall
// back to DefaultTimeout.
func NewBounded(inner Scorer, timeout time.Duration) *Bounded {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Bounded{inner: inner, timeout: timeout}
}

// Score implements Scorer.
func (b *Bounded) Score(ctx context.Context, text string, sc ScoreContext) (Metrics, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	type result struct {
		m   Metrics
		err error
	}

	ch := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result{Neutral(), fmt.Errorf("quality: scorer panic: %v", r)}
			}
		}()
		m, err := b.inner.Score(ctx, text, sc)
		ch <- result{m, err}
	}()

	select {
	case r := <-ch:
		return r.m, r.err
	case <-ctx.Done():
		return Neutral(), ctx.Err()
	}
}
