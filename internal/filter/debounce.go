package filter

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid updates into a single callback invocation after
// a quiet period. A new value arriving before the period elapses cancels the
// pending invocation and restarts the timer, so only the latest value is
// ever applied. The quiet period is caller-supplied: announcement search
// uses a longer window than roster search.
type Debouncer struct {
	mu      sync.Mutex
	quiet   time.Duration
	timer   *time.Timer
	pending string
	apply   func(string)
}

// NewDebouncer creates a debouncer invoking apply after each quiet period.
func NewDebouncer(quiet time.Duration, apply func(string)) *Debouncer {
	return &Debouncer{quiet: quiet, apply: apply}
}

// Update schedules value for application after the quiet period, replacing
// any pending value.
func (d *Debouncer) Update(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = value
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	value := d.pending
	d.timer = nil
	d.mu.Unlock()

	d.apply(value)
}

// Cancel drops any pending value without applying it.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Flush applies a pending value immediately, if any. Used on shutdown so a
// queued update is not lost.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer == nil {
		d.mu.Unlock()
		return
	}
	d.timer.Stop()
	d.timer = nil
	value := d.pending
	d.mu.Unlock()

	d.apply(value)
}
