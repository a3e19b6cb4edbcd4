// Package sandflow implements a single-process, data-parallel streaming
// dataflow runtime: build a pipeline of Map/Then/FlatMap/Inspect operators,
// shuffle records across N worker lanes with Exchange, and drain the
// merged, error-surfacing output through a ResultStream.
//
// # Architecture
//
// Spawn/SpawnJob create N bounded input channels, fan a caller-supplied
// Source into them round-robin, and build one Pipeline per lane from the
// caller's build function. Every Exchange call allocates a fresh set of N
// channels (shared across the job's lanes via an internal exchange table)
// and starts a new Stage goroutine driving a SelectForward loop into a
// SelectSink. The first fatal error from any stage is recorded once in an
// ErrorHook, which also cancels the job's context.Context, and is surfaced
// to the caller via ResultStream.Recv ahead of any buffered output.
//
// # Execution model
//
// There is no explicit poll loop: a "stage" is a goroutine, submitted to an
// Executor, blocking on channel operations or <-ctx.Done(). Back-pressure
// comes from bounded channel capacity plus a one-item buffer in every
// SelectForward driver.
//
// # Thread safety
//
// Every exported type is safe for concurrent use by the goroutines SandFlow
// itself creates; user-supplied callbacks (Then, Inspect, Selector
// functions) are invoked from exactly one lane's goroutine at a time and
// need no internal synchronization unless they touch shared state
// themselves.
package sandflow
