package sandflow

import "context"

// rectifier reduces a uint64 lane id offered by a Selector into [0, size)
// using a bitmask when size is a power of two, falling back to modulo
// otherwise. Ported verbatim (same two-branch shape) from
// stages/sink/select.rs::Rectifier.
type rectifier struct {
	mask uint64
	mod  uint64
	pow2 bool
}

func newRectifier(size uint64) rectifier {
	if size != 0 && size&(size-1) == 0 {
		return rectifier{mask: size - 1, pow2: true}
	}
	return rectifier{mod: size}
}

func (r rectifier) get(index uint64) uint64 {
	if r.pow2 {
		return index & r.mask
	}
	return index % r.mod
}

// SelectSink fans an item out to one of N tagSinks, chosen by a Selector
// and reduced into range by a rectifier. Grounded on
// stages/sink/select.rs::SelectSink.
type SelectSink[T any] struct {
	sinks    []*tagSink[T]
	selector Selector[T]
	rf       rectifier

	// bufferedItem/bufferedIndex cache the single in-flight item and its
	// already-computed lane index across retries, per the Open Question
	// resolution recorded in SPEC_FULL.md §4.E: the selector is invoked
	// exactly once per offered item, never re-invoked on retry.
	bufferedItem  *T
	bufferedIndex uint64
}

// NewSelectSink builds a SelectSink fanning out over sinks using sel to
// choose a lane for each item.
func NewSelectSink[T any](sinks []*LaneSink[T], sel Selector[T]) *SelectSink[T] {
	tagged := make([]*tagSink[T], len(sinks))
	for i, s := range sinks {
		tagged[i] = newTagSink[T](s)
	}
	return &SelectSink[T]{
		sinks:    tagged,
		selector: sel,
		rf:       newRectifier(uint64(len(sinks))),
	}
}

// NewRoundRobinSelectSink builds a SelectSink that distributes items evenly
// across sinks.
func NewRoundRobinSelectSink[T any](sinks []*LaneSink[T]) *SelectSink[T] {
	return NewSelectSink[T](sinks, NewRoundRobinSelector[T]())
}

// NewKeyedSelectSink builds a SelectSink that routes items sharing the same
// key(item) to the same lane.
func NewKeyedSelectSink[T any](sinks []*LaneSink[T], key func(T) uint64) *SelectSink[T] {
	return NewSelectSink[T](sinks, NewKeyedSelector[T](key))
}

// TrySink attempts a non-blocking deposit, computing (and caching) the
// destination lane on first offer of item, and reusing that cached lane on
// every subsequent retry of the same buffered item.
func (s *SelectSink[T]) TrySink(item T) (rejected *T, err error) {
	index := s.bufferedIndex
	if s.bufferedItem == nil {
		index = s.rf.get(s.selector.Select(item))
	}
	rej, err := s.sinks[index].TrySink(item)
	if err != nil {
		return rej, err
	}
	if rej != nil {
		s.bufferedItem = rej
		s.bufferedIndex = index
		return rej, nil
	}
	s.bufferedItem = nil
	return nil, nil
}

// SendBlocking delivers item on the lane cached by the most recent
// TrySink's rejection, blocking until accepted or ctx is cancelled. This is
// the Go realization of "park on Pending" from select_forward.rs: rather
// than registering a waker, the calling goroutine simply blocks on the
// channel send, and the Go runtime wakes it when a receiver drains the lane.
func (s *SelectSink[T]) SendBlocking(ctx context.Context, item T) error {
	if err := s.sinks[s.bufferedIndex].sink.Send(ctx, item); err != nil {
		return err
	}
	s.sinks[s.bufferedIndex].dirty = true
	s.bufferedItem = nil
	return nil
}

// Flush iterates every lane's tagSink, returning on the first error. Unlike
// TrySink, Flush does not short-circuit on a pending lane — Go's
// synchronous calls make re-registering a waker unnecessary, so Flush
// simply runs each lane's (idempotent) flush to completion in turn.
func (s *SelectSink[T]) Flush(ctx context.Context) error {
	for _, t := range s.sinks {
		if err := t.Flush(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close iterates every lane's tagSink, closing each and returning on the
// first error.
func (s *SelectSink[T]) Close(ctx context.Context) error {
	for _, t := range s.sinks {
		if err := t.Close(ctx); err != nil {
			return err
		}
	}
	return nil
}
