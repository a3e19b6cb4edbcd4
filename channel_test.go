package sandflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLaneChannelSet_fanOutAndClose(t *testing.T) {
	sinks, source := newLaneChannelSet[int](3, 4)
	require.Len(t, sinks, 3)

	ctx := context.Background()
	require.NoError(t, sinks[0].Send(ctx, 1))
	require.NoError(t, sinks[1].Send(ctx, 2))

	for i := range sinks {
		sinks[i].Close()
	}

	// both buffered values are observed before end-of-stream, since Close
	// only closes the channel, it does not discard buffered items.
	seen := map[int]bool{}
	for i := 0; i < 2; i++ {
		item, ok, err := source.Recv(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		seen[item] = true
	}
	assert.True(t, seen[1])
	assert.True(t, seen[2])

	_, ok, err := source.Recv(ctx)
	assert.False(t, ok)
	assert.NoError(t, err)
}

func TestLaneChannelSet_closeOnlyOnceAllSendersDone(t *testing.T) {
	sinks, source := newLaneChannelSet[int](2, 4)

	sinks[0].Close()

	// the channel must not be closed yet: sinks[1] hasn't closed its clone.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, ok, err := source.Recv(ctx)
	assert.False(t, ok)
	assert.Error(t, err) // context deadline, not end-of-stream

	sinks[1].Close()

	_, ok, err = source.Recv(context.Background())
	assert.False(t, ok)
	assert.NoError(t, err)
}

func TestLaneSink_TrySend_fullBuffer(t *testing.T) {
	sinks, _ := newLaneChannelSet[int](1, 1)
	sink := sinks[0]

	ok, err := sink.TrySend(1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = sink.TrySend(2)
	require.NoError(t, err)
	assert.False(t, ok, "buffer is full, TrySend must not block")
}

func TestLaneSink_Send_cancelledContext(t *testing.T) {
	sinks, _ := newLaneChannelSet[int](1, 1)
	sink := sinks[0]

	// fill the one-slot buffer first, so the subsequent Send has no ready
	// channel case and must observe ctx cancellation deterministically.
	ok, err := sink.TrySend(0)
	require.NoError(t, err)
	require.True(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = sink.Send(ctx, 1)
	assert.Error(t, err)
	var flowErr *FlowError
	require.ErrorAs(t, err, &flowErr)
	assert.Equal(t, KindChannelSend, flowErr.Kind)
}
