package engine

import "sync/atomic"

// scanLock provides non-blocking lock semantics for the one-scan-at-a-time
// invariant: a refresh that finds the lock held is dropped, never queued.
type scanLock struct {
	state atomic.Int32 // 0 = idle, 1 = workspace scan in flight
}

// TryAcquire attempts to acquire the lock without blocking.
// Returns true if the lock was successfully acquired, false otherwise.
func (l *scanLock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Release releases the lock.
// Must only be called by the goroutine that successfully acquired it.
func (l *scanLock) Release() {
	l.state.Store(0)
}

// Held reports whether a scan currently holds the lock.
func (l *scanLock) Held() bool {
	return l.state.Load() == 1
}
