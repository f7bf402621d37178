// Package gate bounds outbound requests by concurrency and by rate.
package gate

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Gate combines a concurrency limit with a requests-per-second limit.
// Every successful Acquire must be paired with exactly one Release.
type Gate struct {
	slots    *semaphore.Weighted
	limiter  *rate.Limiter
	limit    int
	inFlight atomic.Int64
}

// New returns a Gate that allows at most concurrency requests in flight and
// at most perSecond requests to start per second. A perSecond value of zero
// or less disables the rate limit. Concurrency below one is treated as one.
func New(concurrency int, perSecond float64) *Gate {
	if concurrency < 1 {
		concurrency = 1
	}

	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}

	return &Gate{
		slots: semaphore.NewWeighted(int64(concurrency)),
		// Burst 1 spaces requests evenly.
		limiter: rate.NewLimiter(limit, 1),
		limit:   concurrency,
	}
}

// Acquire blocks until a concurrency slot is free and the rate limiter
// admits a request. It returns ctx.Err() if ctx ends first, in which case no
// slot is held.
func (g *Gate) Acquire(ctx context.Context) error {
	if err := g.slots.Acquire(ctx, 1); err != nil {
		return err
	}
	if err := g.limiter.Wait(ctx); err != nil {
		g.slots.Release(1)
		return err
	}
	g.inFlight.Add(1)
	return nil
}

// Release frees the slot taken by Acquire. It must be called whether the
// request succeeded or not.
func (g *Gate) Release() {
	g.inFlight.Add(-1)
	g.slots.Release(1)
}

// InFlight returns the number of currently held slots.
func (g *Gate) InFlight() int {
	return int(g.inFlight.Load())
}

// Limit returns the concurrency limit.
func (g *Gate) Limit() int {
	return g.limit
}
