package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type sliceSource struct {
	items []int
	pos   int
}

func (s *sliceSource) Next(ctx context.Context) (int, bool, error) {
	if s.pos >= len(s.items) {
		return 0, false, nil
	}
	v := s.items[s.pos]
	s.pos++
	return v, true, nil
}

func TestNewRateLimitedSource_panicsOnNilArgs(t *testing.T) {
	assert.Panics(t, func() {
		NewRateLimitedSource[int](nil, rate.NewLimiter(rate.Inf, 1))
	})
	assert.Panics(t, func() {
		NewRateLimitedSource[int](&sliceSource{}, nil)
	})
}

func TestNewRateLimitedSource_passesThroughItems(t *testing.T) {
	src := &sliceSource{items: []int{1, 2, 3}}
	limited := NewRateLimitedSource[int](src, rate.NewLimiter(rate.Inf, 3))

	ctx := context.Background()
	var got []int
	for {
		v, ok, err := limited.Next(ctx)
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, v)
	}
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestNewRateLimitedSource_gatesOnLimiter(t *testing.T) {
	src := &sliceSource{items: []int{1, 2}}
	limiter := rate.NewLimiter(rate.Every(50*time.Millisecond), 1)
	limited := NewRateLimitedSource[int](src, limiter)

	ctx := context.Background()
	start := time.Now()
	_, ok, err := limited.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = limited.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 30*time.Millisecond, "second item should have waited for a fresh token")
}

func TestNewRateLimitedSource_respectsContextCancellation(t *testing.T) {
	src := &sliceSource{items: []int{1, 2}}
	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	limited := NewRateLimitedSource[int](src, limiter)

	ctx := context.Background()
	_, ok, err := limited.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	cancelCtx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok, err = limited.Next(cancelCtx)
	assert.Error(t, err)
	assert.False(t, ok)
}
