package sandflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHook_FirstSetWins(t *testing.T) {
	ctx, cancel := context.WithCancelCause(context.Background())
	hook := NewErrorHook(cancel)

	first := errors.New("first")
	second := errors.New("second")

	assert.Nil(t, hook.Set(first))
	assert.Equal(t, second, hook.Set(second))

	assert.True(t, hook.HasError())
	assert.ErrorIs(t, context.Cause(ctx), first)
}

func TestErrorHook_Take_destructive(t *testing.T) {
	_, cancel := context.WithCancelCause(context.Background())
	hook := NewErrorHook(cancel)

	want := errors.New("boom")
	require.Nil(t, hook.Set(want))

	got := hook.Take()
	assert.Equal(t, want, got)
	assert.Nil(t, hook.Take())
	assert.False(t, hook.HasError())
}

func TestErrorHook_Set_nilIsNoop(t *testing.T) {
	_, cancel := context.WithCancelCause(context.Background())
	hook := NewErrorHook(cancel)

	assert.Nil(t, hook.Set(nil))
	assert.False(t, hook.HasError())
}
