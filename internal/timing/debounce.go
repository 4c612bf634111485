// Package timing provides debounced and delayed scheduling primitives used by
// the navigator and the scroll-convergence controller.
package timing

import (
	"sync"
	"time"
)

// Debouncer groups rapid successive calls into a single call after a quiet
// period. This is used for filter keystrokes and selection-preview events.
//
// Thread-safety: All methods are safe for concurrent use. The callback is
// guaranteed to not be called concurrently with itself from the debouncer.
type Debouncer struct {
	mu       sync.Mutex
	delay    time.Duration
	timer    *time.Timer
	pending  bool
	seq      uint64 // sequence number to detect stale callbacks
	callback func()
}

// NewDebouncer creates a new debouncer with the specified delay.
//
// The callback will be invoked after no new calls have been made
// for at least 'delay' duration.
func NewDebouncer(delay time.Duration, callback func()) *Debouncer {
	return &Debouncer{
		delay:    delay,
		callback: callback,
	}
}

// Call schedules the callback to run after the debounce delay.
//
// If called multiple times within the delay period, only the last
// call's timing is used - the callback fires once after the final
// quiet period.
func (d *Debouncer) Call() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = true
	d.seq++
	currentSeq := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// Only execute if this is still the current scheduled callback
		// and we're still pending
		if d.pending && d.seq == currentSeq && d.callback != nil {
			d.pending = false
			d.mu.Unlock()
			d.callback()
		} else {
			d.mu.Unlock()
		}
	})
}

// CallImmediate runs the callback immediately if there's a pending call,
// canceling any scheduled debounced call.
func (d *Debouncer) CallImmediate() {
	d.mu.Lock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	// Increment seq to invalidate any running timer callback
	d.seq++

	if d.pending && d.callback != nil {
		d.pending = false
		d.mu.Unlock()
		d.callback()
	} else {
		d.mu.Unlock()
	}
}

// Cancel cancels any pending debounced call.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	// Increment seq to invalidate any running timer callback
	d.seq++
	d.pending = false
}

// IsPending returns true if there's a pending debounced call.
func (d *Debouncer) IsPending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Timer schedules a single delayed continuation with explicit cancellation.
// Unlike Debouncer, each Schedule call replaces the previous one with a
// possibly different delay and callback; the convergence controller uses
// this for its per-attempt delay schedule.
type Timer struct {
	mu    sync.Mutex
	timer *time.Timer
	seq   uint64
}

// Schedule runs fn after delay, replacing any previously scheduled call.
func (t *Timer) Schedule(delay time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.seq++
	currentSeq := t.seq

	if t.timer != nil {
		t.timer.Stop()
	}

	t.timer = time.AfterFunc(delay, func() {
		t.mu.Lock()
		stale := t.seq != currentSeq
		t.mu.Unlock()
		if !stale {
			fn()
		}
	})
}

// Cancel stops any scheduled call. A continuation that has already begun
// running is not interrupted, but a stopped or superseded one never runs.
func (t *Timer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.seq++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
