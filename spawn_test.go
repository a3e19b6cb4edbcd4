package sandflow

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recvAll[T any](t *testing.T, rs *ResultStream[T], timeout time.Duration) ([]T, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	var out []T
	for {
		item, ok, err := rs.Recv(ctx)
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, item)
	}
}

func TestSpawn_mapOnlyPipeline_conservesItems(t *testing.T) {
	src := &sliceSource[int]{items: []int{1, 2, 3, 4, 5}}

	rs, err := Spawn[int, int](context.Background(), src, func() func(*Pipeline[int]) *Pipeline[int] {
		return func(p *Pipeline[int]) *Pipeline[int] {
			return Map(p, func(v int) int { return v * v })
		}
	}, WithParallelism(2))
	require.NoError(t, err)

	got, err := recvAll(t, rs, time.Second)
	require.NoError(t, err)
	sort.Ints(got)
	assert.Equal(t, []int{1, 4, 9, 16, 25}, got)
}

func TestSpawn_parallelismTransparency(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8}
	build := func() func(*Pipeline[int]) *Pipeline[int] {
		return func(p *Pipeline[int]) *Pipeline[int] {
			return Map(p, func(v int) int { return v + 1 })
		}
	}

	for _, parallelism := range []int{1, 2, 4} {
		rs, err := Spawn[int, int](context.Background(), &sliceSource[int]{items: items}, build, WithParallelism(parallelism))
		require.NoError(t, err)

		got, err := recvAll(t, rs, time.Second)
		require.NoError(t, err)
		sort.Ints(got)
		assert.Equal(t, []int{2, 3, 4, 5, 6, 7, 8, 9}, got, "parallelism=%d", parallelism)
	}
}

func TestSpawn_keyedExchange_sameKeyLandsSameLaneEffect(t *testing.T) {
	// every item keyed by parity is routed to one of two lanes; tag each
	// output with the worker index it was processed on, and assert all
	// even keys land on one lane and all odd keys on the other.
	items := []int{0, 1, 2, 3, 4, 5, 6, 7}

	type tagged struct {
		value  int
		worker int
	}

	rs, err := Spawn[int, tagged](context.Background(), &sliceSource[int]{items: items}, func() func(*Pipeline[int]) *Pipeline[tagged] {
		return func(p *Pipeline[int]) *Pipeline[tagged] {
			exchanged := p.Exchange(NewKeyedSelector[int](func(v int) uint64 { return uint64(v % 2) }))
			return Map(exchanged, func(v int) tagged {
				worker, _ := WorkerIndex()
				return tagged{value: v, worker: worker}
			})
		}
	}, WithParallelism(2))
	require.NoError(t, err)

	got, err := recvAll(t, rs, time.Second)
	require.NoError(t, err)
	require.Len(t, got, len(items))

	laneOfParity := map[int]int{}
	for _, g := range got {
		parity := g.value % 2
		if existing, ok := laneOfParity[parity]; ok {
			assert.Equal(t, existing, g.worker, "value %d (parity %d) landed on an inconsistent lane", g.value, parity)
		} else {
			laneOfParity[parity] = g.worker
		}
	}
	assert.NotEqual(t, laneOfParity[0], laneOfParity[1], "even and odd keys should land on different lanes")
}

func TestSpawn_firstErrorWins(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	rs, err := Spawn[int, int](context.Background(), &sliceSource[int]{items: items}, func() func(*Pipeline[int]) *Pipeline[int] {
		return func(p *Pipeline[int]) *Pipeline[int] {
			return Then(p, func(ctx context.Context, v int) (int, error) {
				if v == 3 {
					return 0, NewMessageError("boom at 3")
				}
				return v, nil
			})
		}
	}, WithParallelism(1))
	require.NoError(t, err)

	_, recvErr := recvAll(t, rs, time.Second)
	require.Error(t, recvErr)
	var flowErr *FlowError
	assert.ErrorAs(t, recvErr, &flowErr)
}

func TestSpawn_rejectsInvalidArguments(t *testing.T) {
	_, err := Spawn[int, int](context.Background(), nil, func() func(*Pipeline[int]) *Pipeline[int] {
		return func(p *Pipeline[int]) *Pipeline[int] { return p }
	})
	assert.Error(t, err)

	_, err = SpawnJob[int, int](context.Background(), 1, 0, &sliceSource[int]{}, func() func(*Pipeline[int]) *Pipeline[int] {
		return func(p *Pipeline[int]) *Pipeline[int] { return p }
	})
	assert.Error(t, err)
}

func TestWorkerIndex_unsetOutsideLane(t *testing.T) {
	_, ok := WorkerIndex()
	assert.False(t, ok)
}
