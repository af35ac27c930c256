// Package settle provides a cancellable "run after idle" primitive used to let
// layout settle before measuring.
package settle

import (
	"sync"
	"time"
)

// Timer is a pending scheduled callback
type Timer interface {
	Stop() bool
}

// Scheduler schedules a callback after a delay
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealScheduler schedules callbacks on the runtime timer
type RealScheduler struct{}

// AfterFunc implements Scheduler
func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer runs the most recently triggered callback once the trigger has
// been idle for Delay. A later Trigger supersedes an earlier pending one.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	sched   Scheduler
	timer   Timer
	pending func()
	gen     uint64
}

// NewDebouncer creates a debouncer. A nil scheduler uses RealScheduler.
func NewDebouncer(delay time.Duration, sched Scheduler) *Debouncer {
	if sched == nil {
		sched = RealScheduler{}
	}
	return &Debouncer{delay: delay, sched: sched}
}

// Delay returns the settle delay
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Trigger schedules f, replacing any pending callback
func (d *Debouncer) Trigger(f func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending = f
	d.timer = d.sched.AfterFunc(d.delay, func() { d.fire(gen) })
}

// fire runs the pending callback if gen is still current. A stopped timer
// that already started running loses to a newer trigger here.
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.pending == nil {
		d.mu.Unlock()
		return
	}
	f := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()
	f()
}

// Pending reports whether a callback is waiting to run
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Cancel drops the pending callback, if any
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	d.pending = nil
	d.timer = nil
}

// Flush runs the pending callback immediately on the calling goroutine.
// It returns false if nothing was pending.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	f := d.pending
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()
	if f == nil {
		return false
	}
	f()
	return true
}
