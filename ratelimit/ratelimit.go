// Package ratelimit decorates a SandFlow Source[T] with a token-bucket
// pull-rate gate. The sliding-window idea is grounded on catrate/ring.go
// (a fixed-capacity ring counting events per time bucket), but implemented
// against golang.org/x/time/rate rather than a hand-rolled ring buffer;
// this module contains no ring buffer of its own.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// source mirrors sandflow.Source[T]'s shape structurally, so this package
// has no import-cycle-inducing dependency on the root module.
type source[T any] interface {
	Next(ctx context.Context) (T, bool, error)
}

type sourceFunc[T any] func(ctx context.Context) (T, bool, error)

func (f sourceFunc[T]) Next(ctx context.Context) (T, bool, error) { return f(ctx) }

// NewRateLimitedSource wraps src so that each pulled item waits for one
// token from limiter before being returned, gating how fast a job's source
// fan-in stage can offer work to the lanes. Returns a value structurally
// satisfying sandflow.Source[T]; callers pass it directly as the source
// argument to sandflow.Spawn/SpawnJob.
func NewRateLimitedSource[T any](src source[T], limiter *rate.Limiter) source[T] {
	if src == nil {
		panic("ratelimit: nil source")
	}
	if limiter == nil {
		panic("ratelimit: nil limiter")
	}
	return sourceFunc[T](func(ctx context.Context) (T, bool, error) {
		if err := limiter.Wait(ctx); err != nil {
			var zero T
			return zero, false, err
		}
		return src.Next(ctx)
	})
}
