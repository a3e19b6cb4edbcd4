// Package batch adapts SandFlow's Sink[T] contract (a Put(ctx, item) error
// method) into a micro-batching collector, so a Pipeline's Forward target
// can group items before writing them downstream without SandFlow's core
// runtime caring about batching at all. Adapted from
// microbatch/microbatch.go's Batcher, trading its JobResult/Wait-per-item
// API (appropriate for a request/response batcher) for the simpler
// fire-and-forget shape a streaming Sink needs.
package batch

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned by Put once the Sink has been closed.
var ErrClosed = errors.New("batch: sink closed")

// Config mirrors microbatch.BatcherConfig: at least one of MaxSize or
// FlushInterval must be set, or New panics.
type Config struct {
	// MaxSize is the number of items that triggers an immediate flush.
	// Disabled if <= 0.
	MaxSize int
	// FlushInterval is the maximum time a partial batch waits before being
	// flushed. Disabled if <= 0.
	FlushInterval time.Duration
	// MaxConcurrency bounds the number of in-flight Processor calls.
	// Defaults to 1 if <= 0.
	MaxConcurrency int
}

// Processor receives one flushed batch. Errors are recorded and returned
// from the next Put/Flush/Close call, matching SandFlow's "first error
// wins" policy at the runtime level (§7 of this module's design).
type Processor[T any] func(ctx context.Context, items []T) error

// Sink groups items Put into it into batches, flushing when MaxSize is
// reached or FlushInterval elapses since the first item of a partial
// batch, and dispatches each flushed batch to Processor, bounded by
// MaxConcurrency concurrent dispatches.
type Sink[T any] struct {
	cfg       Config
	processor Processor[T]

	mu     sync.Mutex
	buf    []T
	timer  *time.Timer
	closed bool
	err    error

	running chan struct{}
	wg      sync.WaitGroup
}

// New constructs a Sink. It panics if processor is nil, or if neither
// MaxSize nor FlushInterval is set, matching microbatch.NewBatcher's
// validation.
func New[T any](processor Processor[T], cfg Config) *Sink[T] {
	if processor == nil {
		panic("batch: nil processor")
	}
	if cfg.MaxSize <= 0 && cfg.FlushInterval <= 0 {
		panic("batch: at least one of MaxSize or FlushInterval must be set")
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 1
	}
	return &Sink[T]{
		cfg:       cfg,
		processor: processor,
		running:   make(chan struct{}, cfg.MaxConcurrency),
	}
}

// Put appends item to the pending batch, flushing immediately if MaxSize is
// reached.
func (s *Sink[T]) Put(ctx context.Context, item T) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.buf = append(s.buf, item)
	shouldFlush := s.cfg.MaxSize > 0 && len(s.buf) >= s.cfg.MaxSize
	if len(s.buf) == 1 && s.cfg.FlushInterval > 0 && !shouldFlush {
		s.timer = time.AfterFunc(s.cfg.FlushInterval, func() { _ = s.Flush(context.Background()) })
	}
	var batch []T
	if shouldFlush {
		batch = s.buf
		s.buf = nil
		if s.timer != nil {
			s.timer.Stop()
			s.timer = nil
		}
	}
	s.mu.Unlock()

	if batch != nil {
		s.dispatch(ctx, batch)
	}
	return s.pendingError()
}

// Flush forces any pending partial batch to dispatch immediately.
func (s *Sink[T]) Flush(ctx context.Context) error {
	s.mu.Lock()
	if len(s.buf) == 0 {
		s.mu.Unlock()
		return s.pendingError()
	}
	batch := s.buf
	s.buf = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.dispatch(ctx, batch)
	return s.pendingError()
}

// Close flushes any pending batch, waits for every dispatched batch to
// finish processing, and returns the first error recorded by Processor, if
// any.
func (s *Sink[T]) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	_ = s.Flush(ctx)
	s.wg.Wait()
	return s.pendingError()
}

func (s *Sink[T]) dispatch(ctx context.Context, batch []T) {
	s.running <- struct{}{}
	s.wg.Add(1)
	go func() {
		defer func() {
			<-s.running
			s.wg.Done()
		}()
		if err := s.processor(ctx, batch); err != nil {
			s.mu.Lock()
			if s.err == nil {
				s.err = err
			}
			s.mu.Unlock()
		}
	}()
}

func (s *Sink[T]) pendingError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
