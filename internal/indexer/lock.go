package indexer

import "sync/atomic"

// runLock serializes indexing runs without blocking: a second caller is
// told the pipeline is busy instead of queueing behind a long run.
type runLock struct {
	state atomic.Int32 // 0 = unlocked, 1 = locked
}

// TryAcquire attempts to acquire the lock without blocking.
// Returns true if the lock was successfully acquired, false otherwise.
func (l *runLock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Release releases the lock.
// Must only be called by the goroutine that successfully acquired the lock.
func (l *runLock) Release() {
	l.state.Store(0)
}
