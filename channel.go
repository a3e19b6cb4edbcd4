package sandflow

import (
	"context"
	"sync/atomic"
)

// DefaultChannelCapacity is the buffer size used for exchange channels when
// a JobBuilderOption does not override it.
const DefaultChannelCapacity = 1024

// channelState is the shared backing store of one lane channel: a plain Go
// channel plus a sender refcount. It is never exposed directly; callers
// receive a LaneSink/LaneSource wrapper. Grounded on channels/local.rs's
// mpsc::channel pairing, translated to a native chan T plus an
// atomic.Int64 to model "close only once every sender clone has closed",
// which futures::channel::mpsc::Sender gives for free via internal
// refcounting but a bare Go chan does not.
type channelState[T any] struct {
	ch   chan T
	refs atomic.Int64
}

func newChannelState[T any](capacity int, senders int) *channelState[T] {
	if capacity <= 0 {
		capacity = DefaultChannelCapacity
	}
	s := &channelState[T]{ch: make(chan T, capacity)}
	s.refs.Store(int64(senders))
	return s
}

// LaneSink is one clone of the send end of a bounded lane channel. Multiple
// LaneSinks may share one channelState (one per producing lane in a
// shuffle); the underlying channel is closed only when every clone has
// called Close.
type LaneSink[T any] struct {
	state  *channelState[T]
	closed atomic.Bool
}

func newLaneSink[T any](state *channelState[T]) *LaneSink[T] {
	return &LaneSink[T]{state: state}
}

// Send blocks until item is delivered, the job context is cancelled, or the
// channel has already been closed by this sink.
func (s *LaneSink[T]) Send(ctx context.Context, item T) error {
	if s.closed.Load() {
		return NewChannelSendError("send on closed LaneSink", nil)
	}
	select {
	case s.state.ch <- item:
		return nil
	case <-ctx.Done():
		return NewChannelSendError("send cancelled", context.Cause(ctx))
	}
}

// TrySend attempts a non-blocking delivery. It reports ok=false, with no
// error, when the channel is currently full — the caller should fall back
// to a blocking Send.
func (s *LaneSink[T]) TrySend(item T) (ok bool, err error) {
	if s.closed.Load() {
		return false, NewChannelSendError("send on closed LaneSink", nil)
	}
	select {
	case s.state.ch <- item:
		return true, nil
	default:
		return false, nil
	}
}

// Close decrements the shared sender refcount, closing the underlying
// channel once it reaches zero. Close is idempotent per LaneSink instance.
func (s *LaneSink[T]) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	if s.state.refs.Add(-1) == 0 {
		close(s.state.ch)
	}
}

// LaneSource is the single receive end of a lane channel.
type LaneSource[T any] struct {
	state *channelState[T]
}

func newLaneSource[T any](state *channelState[T]) *LaneSource[T] {
	return &LaneSource[T]{state: state}
}

// Recv blocks until a value is available, the channel is closed by every
// sender clone (ok=false, err=nil — end-of-stream is not an error), or ctx
// is cancelled (err set).
func (s *LaneSource[T]) Recv(ctx context.Context) (item T, ok bool, err error) {
	select {
	case item, ok = <-s.state.ch:
		if !ok {
			var zero T
			return zero, false, nil
		}
		return item, true, nil
	case <-ctx.Done():
		var zero T
		return zero, false, NewChannelSendError("recv cancelled", context.Cause(ctx))
	}
}

// newLaneChannelSet allocates one channelState shared by `peers` LaneSinks
// (one per producing lane) and one LaneSource, matching
// channels/local.rs::alloc's "every lane gets the full sender set" shape.
func newLaneChannelSet[T any](peers, capacity int) ([]*LaneSink[T], *LaneSource[T]) {
	state := newChannelState[T](capacity, peers)
	sinks := make([]*LaneSink[T], peers)
	for i := range sinks {
		sinks[i] = newLaneSink[T](state)
	}
	return sinks, newLaneSource[T](state)
}
