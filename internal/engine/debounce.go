package engine

import (
	"sync"
	"time"
)

// Debouncer delays a callback until triggers have quieted for a fixed
// interval. One abstraction serves both engine channels: the 500ms
// refresh channel and the 100ms per-document patch channels.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	fn      func()
	stopped bool
}

// NewDebouncer creates a debouncer for fn with the given quiet interval.
func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger (re)arms the timer. Each call within the quiet interval resets
// it, so a burst of triggers produces exactly one callback invocation.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fn)
}

// Force cancels any pending timer and runs the callback immediately on
// the calling goroutine.
func (d *Debouncer) Force() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	d.fn()
}

// Cancel drops any pending timer without running the callback. The
// debouncer stays usable.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Stop cancels any pending timer and retires the debouncer; subsequent
// triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
