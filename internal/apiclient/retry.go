package apiclient

import (
	"context"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy is a bounded exponential backoff without jitter.
// A call makes at most MaxRetries+1 attempts.
type Policy struct {
	MaxRetries    int
	BaseDelay     time.Duration
	BackoffFactor float64
}

// DefaultPolicy matches the browser client: 3 retries, 2s base, factor 1.5 (2s, 3s, 4.5s).
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:    3,
		BaseDelay:     2 * time.Second,
		BackoffFactor: 1.5,
	}
}

// Attempts is the total number of attempts the policy allows.
func (p Policy) Attempts() int {
	if p.MaxRetries < 0 {
		return 1
	}
	return p.MaxRetries + 1
}

// BackOff returns the delay sequence for one call: BaseDelay *
// BackoffFactor^n for n = 0..MaxRetries-1, then backoff.Stop. It also stops
// once ctx is done. Factors below 1 are treated as 1 so the sequence never
// shrinks.
func (p Policy) BackOff(ctx context.Context) backoff.BackOff {
	factor := p.BackoffFactor
	if factor < 1 {
		factor = 1
	}
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.BaseDelay
	exp.Multiplier = factor
	exp.RandomizationFactor = 0
	exp.MaxInterval = time.Duration(math.MaxInt64)
	exp.MaxElapsedTime = 0
	exp.Reset()

	retries := 0
	if p.MaxRetries > 0 {
		retries = p.MaxRetries
	}
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(retries)), ctx)
}

// Schedule lists every delay the policy would wait, in order.
func (p Policy) Schedule() []time.Duration {
	b := p.BackOff(context.Background())
	var out []time.Duration
	for d := b.NextBackOff(); d != backoff.Stop; d = b.NextBackOff() {
		out = append(out, d)
	}
	return out
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
