// Package workerlocal implements a goroutine-local registry of lane
// indices, the Go stand-in for the thread-local worker_index described in
// flow.rs (thread_local! WORKER_INDEX: Cell<isize>, with a
// WorkerIndexGuard RAII set/clear). Go has no thread-locals, and Go
// goroutines are not addressable by stable handle, so this package keys
// the registry on the calling goroutine's id, parsed out of a short
// runtime.Stack dump — the same technique the wider Go ecosystem uses
// wherever goroutine-local storage is unavoidable.
package workerlocal

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

var (
	mu    sync.RWMutex
	index = make(map[uint64]int)
)

// goroutineID parses the numeric goroutine id out of the current
// goroutine's stack trace header, e.g. "goroutine 18 [running]:".
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	const prefix = "goroutine "
	if !bytes.HasPrefix(b, []byte(prefix)) {
		return 0
	}
	b = b[len(prefix):]
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// Set installs idx as the calling goroutine's lane index. Call once at the
// top of a lane's stage-running goroutine, before any stages execute.
func Set(idx int) {
	gid := goroutineID()
	mu.Lock()
	index[gid] = idx
	mu.Unlock()
}

// Clear removes the calling goroutine's lane index, matching
// WorkerIndexGuard's drop-time clear. Call via defer immediately after Set.
func Clear() {
	gid := goroutineID()
	mu.Lock()
	delete(index, gid)
	mu.Unlock()
}

// Get returns the calling goroutine's installed lane index, and whether one
// has been installed. Off-lane callers (e.g. the caller of Spawn itself)
// observe ok=false, the Go equivalent of the Rust original's -1 sentinel,
// upgraded per spec.md to an (int, bool) pair.
func Get() (int, bool) {
	gid := goroutineID()
	mu.RLock()
	idx, ok := index[gid]
	mu.RUnlock()
	return idx, ok
}
