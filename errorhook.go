package sandflow

import (
	"context"
	"sync"
)

// ErrorHook is a process-once fatal-error cell shared by every Stage of one
// job. The first Set call wins and cancels the job's context; every
// subsequent Set call is rejected and returned to its caller so it is never
// silently dropped (the caller logs it at a warning level instead).
//
// Grounded on stages/utils.rs::ErrorHook, translated from an
// AtomicBool+UnsafeCell CAS pair into a sync.Mutex-guarded error plus a
// context.CancelCauseFunc, since Go has no safe unchecked-cell equivalent
// and cancelling a context is the idiomatic way to propagate "stop now" to
// every suspended channel operation in the job.
type ErrorHook struct {
	mu      sync.Mutex
	err     error
	tripped bool
	cancel  context.CancelCauseFunc
}

// NewErrorHook creates an ErrorHook bound to cancel, the job's cancellation
// function. Set will invoke cancel exactly once, on the winning call.
func NewErrorHook(cancel context.CancelCauseFunc) *ErrorHook {
	return &ErrorHook{cancel: cancel}
}

// Set records err as the job's fatal error if none has been recorded yet,
// and cancels the job context on that first, winning call. If an error was
// already recorded, Set returns err unchanged as rejected, leaving the
// original error in place.
func (h *ErrorHook) Set(err error) (rejected error) {
	if err == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.tripped {
		return err
	}
	h.tripped = true
	h.err = err
	if h.cancel != nil {
		h.cancel(err)
	}
	return nil
}

// HasError reports whether a fatal error has been recorded, without
// consuming it.
func (h *ErrorHook) HasError() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err != nil
}

// Take destructively returns the recorded error, clearing the cell. Only the
// first caller after the winning Set observes a non-nil result; later callers
// observe nil, since every later Set is rejected.
func (h *ErrorHook) Take() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	err := h.err
	h.err = nil
	return err
}

// Peek returns the recorded error without clearing it, for logging call
// sites that must not consume the error meant for ResultStream.Recv.
func (h *ErrorHook) Peek() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}
