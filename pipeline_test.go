package sandflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sliceSource is a simple in-memory Source[T] used throughout the test
// suite, playing the same role as a hand-rolled test double would in the
// teacher's own *_test.go files.
type sliceSource[T any] struct {
	items []T
	pos   int
	err   error
}

func (s *sliceSource[T]) Next(ctx context.Context) (T, bool, error) {
	if s.err != nil && s.pos >= len(s.items) {
		var zero T
		return zero, false, s.err
	}
	if s.pos >= len(s.items) {
		var zero T
		return zero, false, nil
	}
	item := s.items[s.pos]
	s.pos++
	return item, true, nil
}

func collect[T any](t *testing.T, src Source[T]) ([]T, error) {
	t.Helper()
	var out []T
	ctx := context.Background()
	for {
		item, ok, err := src.Next(ctx)
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, item)
	}
}

func TestMap_conservesCountAndOrder(t *testing.T) {
	builder := NewJobBuilder(1, 1, 0, NewErrorHook(func(error) {}), newExchangeTable(1, 16))
	p := newPipeline[int](builder, &sliceSource[int]{items: []int{1, 2, 3}})

	doubled := Map(p, func(v int) int { return v * 2 })

	got, err := collect(t, doubled.source)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 6}, got)
}

func TestThen_shortCircuitsOnError(t *testing.T) {
	builder := NewJobBuilder(1, 1, 0, NewErrorHook(func(error) {}), newExchangeTable(1, 16))
	p := newPipeline[int](builder, &sliceSource[int]{items: []int{1, 2, -1, 3}})

	checked := Then(p, func(ctx context.Context, v int) (int, error) {
		if v < 0 {
			return 0, NewMessageError("negative value")
		}
		return v, nil
	})

	got, err := collect(t, checked.source)
	require.Error(t, err)
	assert.Equal(t, []int{1, 2}, got)
}

func TestFlatMap_flattensInOrder(t *testing.T) {
	builder := NewJobBuilder(1, 1, 0, NewErrorHook(func(error) {}), newExchangeTable(1, 16))
	p := newPipeline[int](builder, &sliceSource[int]{items: []int{1, 2, 3}})

	repeated := FlatMap(p, func(v int) []int {
		out := make([]int, v)
		for i := range out {
			out[i] = v
		}
		return out
	})

	got, err := collect(t, repeated.source)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 2, 3, 3, 3}, got)
}

func TestInspect_observesOnlySuccessfulPulls(t *testing.T) {
	builder := NewJobBuilder(1, 1, 0, NewErrorHook(func(error) {}), newExchangeTable(1, 16))
	p := newPipeline[int](builder, &sliceSource[int]{items: []int{1, 2, 3}, err: NewMessageError("boom")})

	var seen []int
	inspected := p.Inspect(func(v int) { seen = append(seen, v) })

	_, err := collect(t, inspected.source)
	require.Error(t, err)
	assert.Equal(t, []int{1, 2, 3}, seen)
}

func TestForward_feedsSinkAndReturnsSinkError(t *testing.T) {
	builder := NewJobBuilder(1, 1, 0, NewErrorHook(func(error) {}), newExchangeTable(1, 16))
	p := newPipeline[int](builder, &sliceSource[int]{items: []int{1, 2, 3}})

	var got []int
	sinkErr := NewMessageError("sink refused")
	sink := SinkFunc[int](func(ctx context.Context, item int) error {
		got = append(got, item)
		if item == 2 {
			return sinkErr
		}
		return nil
	})

	err := p.Forward(context.Background(), sink)
	assert.ErrorIs(t, err, sinkErr)
	assert.Equal(t, []int{1, 2}, got)
}

func TestPipeline_Exchange_keyedRoutingToSameLane(t *testing.T) {
	const lanes = 2
	hook := NewErrorHook(func(error) {})
	table := newExchangeTable(lanes, 16)

	builders := make([]*JobBuilder, lanes)
	pipelines := make([]*Pipeline[int], lanes)
	for i := 0; i < lanes; i++ {
		builders[i] = NewJobBuilder(1, lanes, i, hook, table)
	}

	// lane 0 is the only producer in this test; it exchanges evens to lane 0
	// and odds to lane 1 via a keyed selector on parity.
	pipelines[0] = newPipeline[int](builders[0], &sliceSource[int]{items: []int{0, 1, 2, 3, 4, 5}})
	exchanged := pipelines[0].Exchange(NewKeyedSelector[int](func(v int) uint64 { return uint64(v % 2) }))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	run0 := builders[0].Build()
	go run0.Run(ctx, NewFixedExecutor())

	// lane 1 has no stages of its own in this test; read lane 1's inbox
	// directly to observe the shuffle's routing.
	_, lane1Source := Allocate[int](builders[1])

	evens, err := drainN(t, exchanged.source, 3)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{0, 2, 4}, evens)

	odds, err := drainN(t, &laneSourceAdapter[int]{recv: lane1Source}, 3)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 3, 5}, odds)
}

func drainN[T any](t *testing.T, src Source[T], n int) ([]T, error) {
	t.Helper()
	ctx := context.Background()
	out := make([]T, 0, n)
	for len(out) < n {
		item, ok, err := src.Next(ctx)
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, item)
	}
	return out, nil
}
