package sandflow

import "context"

// TrySink is a non-blocking deposit-or-return-item sink adapter. TrySink
// attempts to deposit item without blocking; if the underlying target is
// not ready it returns the item back to the caller (rejected != nil) rather
// than blocking, so the caller can fall back to a blocking send or try
// another destination. Grounded on stages/sink/mod.rs::TrySink.
type TrySink[T any] interface {
	// TrySink attempts a non-blocking deposit. A nil rejected with a nil
	// err means the item was accepted.
	TrySink(item T) (rejected *T, err error)
	// Flush is idempotent, and a no-op if nothing has been deposited since
	// the last Flush (Go channels need no explicit flush; tagSink uses this
	// only to track per-target "dirty" skip-on-clean behavior, see below).
	Flush(ctx context.Context) error
	// Close is idempotent.
	Close(ctx context.Context) error
}

// tagSink wraps one LaneSink, tracking whether it has received a deposit
// since the last Flush (dirty) and whether Close has already run. Grounded
// on stages/sink/select.rs::TagSink.
type tagSink[T any] struct {
	sink   *LaneSink[T]
	dirty  bool
	closed bool
}

func newTagSink[T any](sink *LaneSink[T]) *tagSink[T] {
	return &tagSink[T]{sink: sink}
}

func (t *tagSink[T]) TrySink(item T) (rejected *T, err error) {
	if t.closed {
		return &item, NewChannelSendError("try-sink on closed tagSink", nil)
	}
	ok, err := t.sink.TrySend(item)
	if err != nil {
		return &item, err
	}
	if !ok {
		return &item, nil
	}
	t.dirty = true
	return nil, nil
}

// Flush is a no-op when the sink is clean; this is the Go realization of
// "skip clean sinks" — there is no buffered data to force downstream since
// the underlying chan T already delivered the item, so Flush only clears
// the dirty flag that drives SelectSink's fan-out cost.
func (t *tagSink[T]) Flush(ctx context.Context) error {
	if !t.dirty {
		return nil
	}
	t.dirty = false
	return nil
}

func (t *tagSink[T]) Close(ctx context.Context) error {
	if t.closed {
		return nil
	}
	t.closed = true
	t.sink.Close()
	return nil
}
