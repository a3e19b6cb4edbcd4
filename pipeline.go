package sandflow

import "context"

// Source is a pull-based, lazily-composed stream of T. Map, Then, FlatMap,
// and Inspect compose Source implementations without allocating any
// channel or goroutine — only Exchange and Forward materialize real
// concurrency. Grounded on streams/pstream.rs's PartialStream combinator
// chain (map/then/flat_map/inspect are thin wrappers over a lazy stream);
// Source is the Go shape of that same laziness, expressed as an interface
// instead of a trait object.
type Source[T any] interface {
	// Next pulls the next item. ok=false with a nil error means the source
	// is exhausted; a non-nil error ends the stream and must be surfaced
	// without any further calls to Next.
	Next(ctx context.Context) (item T, ok bool, err error)
}

// SourceFunc adapts a plain pull function to a Source.
type SourceFunc[T any] func(ctx context.Context) (T, bool, error)

func (f SourceFunc[T]) Next(ctx context.Context) (T, bool, error) { return f(ctx) }

// Sink receives items pulled from a Pipeline by Forward.
type Sink[T any] interface {
	Put(ctx context.Context, item T) error
}

// SinkFunc adapts a plain function to a Sink.
type SinkFunc[T any] func(ctx context.Context, item T) error

func (f SinkFunc[T]) Put(ctx context.Context, item T) error { return f(ctx, item) }

// Pipeline is a fluent, per-lane view over a Source[T], bound to the
// JobBuilder that owns the lane's stage list and exchange-channel table.
// Grounded on streams/pstream.rs::PartialStream.
type Pipeline[T any] struct {
	builder *JobBuilder
	source  Source[T]
}

// newPipeline wraps source as a Pipeline bound to builder. Used internally
// by JobBuilder/Spawn to seed the first lane-local Pipeline from a
// LaneSource, and by Map/Then/FlatMap/Inspect to rewrap a derived Source.
func newPipeline[T any](builder *JobBuilder, source Source[T]) *Pipeline[T] {
	return &Pipeline[T]{builder: builder, source: source}
}

// Map applies f to every item of p, lazily. Package-level, not a method,
// because Go methods cannot introduce new type parameters (§0 of
// SPEC_FULL.md).
func Map[T, U any](p *Pipeline[T], f func(T) U) *Pipeline[U] {
	return newPipeline[U](p.builder, SourceFunc[U](func(ctx context.Context) (U, bool, error) {
		item, ok, err := p.source.Next(ctx)
		if err != nil || !ok {
			var zero U
			return zero, false, err
		}
		return f(item), true, nil
	}))
}

// Then applies a fallible, context-aware transform to every item of p,
// lazily. A returned error short-circuits the Source chain: once Then's f
// returns an error, every subsequent Next call returns that same error
// without pulling further from p.
func Then[T, U any](p *Pipeline[T], f func(context.Context, T) (U, error)) *Pipeline[U] {
	var failed error
	return newPipeline[U](p.builder, SourceFunc[U](func(ctx context.Context) (U, bool, error) {
		var zero U
		if failed != nil {
			return zero, false, failed
		}
		item, ok, err := p.source.Next(ctx)
		if err != nil {
			failed = err
			return zero, false, err
		}
		if !ok {
			return zero, false, nil
		}
		out, err := f(ctx, item)
		if err != nil {
			failed = err
			return zero, false, err
		}
		return out, true, nil
	}))
}

// FlatMap applies f to every item of p, flattening the returned slices into
// the output stream one element at a time via an internal FIFO queue. Go
// has no generator-stream primitive to delegate to, unlike
// streams/pstream.rs::flat_map's reliance on futures::StreamExt::flat_map,
// so the queue is materialized explicitly here (see SUPPLEMENTED FEATURES
// in SPEC_FULL.md).
func FlatMap[T, U any](p *Pipeline[T], f func(T) []U) *Pipeline[U] {
	var queue []U
	return newPipeline[U](p.builder, SourceFunc[U](func(ctx context.Context) (U, bool, error) {
		var zero U
		for len(queue) == 0 {
			item, ok, err := p.source.Next(ctx)
			if err != nil {
				return zero, false, err
			}
			if !ok {
				return zero, false, nil
			}
			queue = f(item)
		}
		out := queue[0]
		queue = queue[1:]
		return out, true, nil
	}))
}

// Inspect calls f on every item of p as it is pulled, for side effects such
// as metrics or logging, without altering the stream. Per the Open
// Question decision recorded in SPEC_FULL.md, Inspect never observes a
// pulled error — a failing pull short-circuits before f runs.
func (p *Pipeline[T]) Inspect(f func(T)) *Pipeline[T] {
	return newPipeline[T](p.builder, SourceFunc[T](func(ctx context.Context) (T, bool, error) {
		item, ok, err := p.source.Next(ctx)
		if err != nil || !ok {
			return item, ok, err
		}
		f(item)
		return item, true, nil
	}))
}

// Exchange shuffles p's items across every lane of the job according to
// sel, and returns a new Pipeline sourced from this lane's own inbound
// channel. Exchange is the only Pipeline operator that allocates channels
// and adds a Stage; Forward drains the chain on the calling goroutine.
func (p *Pipeline[T]) Exchange(sel Selector[T]) *Pipeline[T] {
	sinks, recv := Allocate[T](p.builder)
	selectSink := NewSelectSink[T](sinks, sel)
	source := p.source
	p.builder.AddStage(func(ctx context.Context) error {
		return runSelectForward[T](ctx, source, selectSink)
	})
	return newPipeline[T](p.builder, &laneSourceAdapter[T]{recv: recv})
}

// Forward pulls p to exhaustion, depositing every item into sink, and
// returns the first error raised by either side.
func (p *Pipeline[T]) Forward(ctx context.Context, sink Sink[T]) error {
	for {
		item, ok, err := p.source.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := sink.Put(ctx, item); err != nil {
			return err
		}
	}
}

// laneSourceAdapter adapts a *LaneSource[T] (a real channel receive end) to
// the pull-based Source[T] interface, so downstream operators compose
// uniformly whether or not an Exchange sits upstream.
type laneSourceAdapter[T any] struct {
	recv *LaneSource[T]
}

func (a *laneSourceAdapter[T]) Next(ctx context.Context) (T, bool, error) {
	return a.recv.Recv(ctx)
}
