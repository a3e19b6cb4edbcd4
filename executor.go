package sandflow

import "sync"

// Executor is the "spawn a send-able task" collaborator described in
// spec.md §1 — a process-wide task executor, distilled from executor/src/
// lib.rs's global lazy ThreadPool. This runtime never schedules its own
// goroutines directly against runtime.Gosched; every Stage/SourceStage
// goroutine is started via Executor.Submit, so callers may substitute their
// own pool (e.g. an existing worker pool, or a test double that runs
// synchronously) via WithExecutor.
type Executor interface {
	// Submit runs fn, asynchronously with respect to the caller.
	Submit(fn func())
}

// fixedExecutor is a fixed-size goroutine pool, mirroring executor/src/
// lib.rs's pool_size(16) default. Unlike the Rust original's bounded
// channel of queued closures, this implementation spawns one goroutine per
// Submit and relies on a counting semaphore to cap concurrency — simpler,
// and idiomatic for Go, where goroutines are cheap and a hand-rolled work
// queue would just reimplement what the Go scheduler already does well.
type fixedExecutor struct {
	sem chan struct{}
	wg  sync.WaitGroup
}

// NewFixedExecutor creates an Executor backed by a fixed concurrency limit
// (default 16 workers, overridable via WithWorkerCount).
func NewFixedExecutor(opts ...ExecutorOption) Executor {
	resolved := resolveExecutorOptions(opts)
	workers := resolved.workers
	if workers <= 0 {
		workers = 16
	}
	return &fixedExecutor{sem: make(chan struct{}, workers)}
}

func (e *fixedExecutor) Submit(fn func()) {
	e.sem <- struct{}{}
	e.wg.Add(1)
	go func() {
		defer func() {
			<-e.sem
			e.wg.Done()
		}()
		fn()
	}()
}

// Wait blocks until every task submitted so far has returned. Exposed for
// tests; not part of the Executor interface since ordinary callers observe
// job completion through ResultStream instead.
func (e *fixedExecutor) Wait() { e.wg.Wait() }

var (
	defaultExecutorMu sync.Mutex
	defaultExecutor   Executor
)

// DefaultExecutor returns the process-wide Executor used by Spawn/SpawnJob
// when no WithExecutor option is supplied, lazily constructing a
// fixedExecutor on first use (mirroring the Rust original's lazy global
// ThreadPool).
func DefaultExecutor() Executor {
	defaultExecutorMu.Lock()
	defer defaultExecutorMu.Unlock()
	if defaultExecutor == nil {
		defaultExecutor = NewFixedExecutor()
	}
	return defaultExecutor
}

// SetDefaultExecutor overrides the process-wide default Executor. Intended
// for test setup and for processes embedding SandFlow alongside an existing
// pool.
func SetDefaultExecutor(e Executor) {
	defaultExecutorMu.Lock()
	defaultExecutor = e
	defaultExecutorMu.Unlock()
}
