package sandflow

import "github.com/bmmcq/sandflow/internal/workerlocal"

// WorkerIndex returns the lane index of the calling goroutine, if it is
// currently running inside a Stage/SourceStage goroutine of a job. Callers
// outside of such a goroutine (including the goroutine that called Spawn)
// observe ok=false — the Go upgrade, per spec.md, of the Rust original's
// -1 sentinel thread-local into an (int, bool) pair.
func WorkerIndex() (int, bool) {
	return workerlocal.Get()
}
