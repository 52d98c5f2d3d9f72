// Package latency simulates the response time of a remote backend.
package latency

import (
	"context"
	"math/rand/v2"
	"time"
)

// Simulator waits a pseudo-random duration in [min, max] before each call resolves.
type Simulator struct {
	min, max time.Duration
}

func New(minDelay, maxDelay time.Duration) *Simulator {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &Simulator{min: minDelay, max: maxDelay}
}

// None never waits.
func None() *Simulator { return &Simulator{} }

// Fixed always waits d.
func Fixed(d time.Duration) *Simulator { return &Simulator{min: d, max: d} }

func (s *Simulator) next() time.Duration {
	if s.max <= s.min {
		return s.min
	}
	return s.min + rand.N(s.max-s.min+1)
}

// Wait blocks for the simulated delay or until ctx is done.
func (s *Simulator) Wait(ctx context.Context) error {
	if s == nil {
		return ctx.Err()
	}
	d := s.next()
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
