package sandflow

import "sync/atomic"

// Selector maps an item to a uint64 lane id, reduced modulo the sink count
// by SelectSink. Grounded on stages/sink/select.rs's Selector trait (and its
// blanket impl over FnMut(&T) -> u64).
type Selector[T any] interface {
	Select(item T) uint64
}

// SelectorFunc adapts a plain function to a Selector.
type SelectorFunc[T any] func(item T) uint64

func (f SelectorFunc[T]) Select(item T) uint64 { return f(item) }

// roundRobinSelector ignores the item and cycles through lanes using an
// atomic cursor, matching channels/multi_sink.rs::RoundRobinSink's cursor
// field, generalized from a cursor-on-the-sink to a cursor-on-the-selector
// so it composes with SelectSink uniformly.
type roundRobinSelector[T any] struct {
	cursor atomic.Uint64
}

// NewRoundRobinSelector returns a Selector that distributes items across
// lanes in round-robin order, ignoring item content.
func NewRoundRobinSelector[T any]() Selector[T] {
	return &roundRobinSelector[T]{}
}

func (r *roundRobinSelector[T]) Select(item T) uint64 {
	return r.cursor.Add(1) - 1
}

// keyedSelector wraps a caller-supplied key function, routing equal keys to
// the same lane (given a deterministic rectifier reduction downstream).
// Grounded on the keyed exchange described in stages/sink/select.rs and the
// Rust source's RouteSink equivalent mentioned in original_source/.
type keyedSelector[T any] struct {
	key func(T) uint64
}

// NewKeyedSelector returns a Selector that routes item according to key(item).
func NewKeyedSelector[T any](key func(T) uint64) Selector[T] {
	if key == nil {
		panic("sandflow: nil key func passed to NewKeyedSelector")
	}
	return &keyedSelector[T]{key: key}
}

func (k *keyedSelector[T]) Select(item T) uint64 {
	return k.key(item)
}
