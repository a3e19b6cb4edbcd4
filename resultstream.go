package sandflow

import "context"

// ResultStream is the terminal, caller-facing view of a job: a merged
// stream of every lane's output, with the job's first fatal error injected
// ahead of any buffered items. Grounded on streams/result_stream.rs, with
// the ErrorHook.Take-first check from spec.md §4.J layered on top (the
// Rust source's ResultStream is a bare passthrough; spec.md's addition is
// intentional and implemented here, not the literal original).
type ResultStream[T any] struct {
	source *LaneSource[T]
	hook   *ErrorHook
	sunk   bool
}

// NewResultStream wraps source (the job's shared merged-output channel) and
// hook (the job's ErrorHook) into a ResultStream.
func NewResultStream[T any](source *LaneSource[T], hook *ErrorHook) *ResultStream[T] {
	return &ResultStream[T]{source: source, hook: hook}
}

// Recv returns the next item, or the job's fatal error (surfaced exactly
// once), or end-of-stream (ok=false, err=nil) once the merged channel
// closes and no error was recorded.
func (r *ResultStream[T]) Recv(ctx context.Context) (item T, ok bool, err error) {
	if !r.sunk {
		if e := r.hook.Take(); e != nil {
			r.sunk = true
			var zero T
			return zero, false, e
		}
	}
	item, ok, err = r.source.Recv(ctx)
	if !ok && err == nil && !r.sunk {
		if e := r.hook.Take(); e != nil {
			r.sunk = true
			return item, false, e
		}
	}
	return item, ok, err
}
