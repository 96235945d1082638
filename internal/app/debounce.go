package app

import (
	"sync"
	"time"
)

// Timer is a scheduled task that can be cancelled.
type Timer interface {
	// Stop cancels the task. It reports false if the task already ran or was stopped.
	Stop() bool
}

// Scheduler runs tasks after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealScheduler schedules on the runtime timer.
type RealScheduler struct{}

// AfterFunc wraps time.AfterFunc.
func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// debouncer keeps at most one scheduled task per key.
// Scheduling a key replaces its previous task.
type debouncer struct {
	sched Scheduler
	delay time.Duration

	mu     sync.Mutex
	timers map[string]Timer
	gen    map[string]uint64
}

func newDebouncer(sched Scheduler, delay time.Duration) *debouncer {
	return &debouncer{
		sched:  sched,
		delay:  delay,
		timers: make(map[string]Timer),
		gen:    make(map[string]uint64),
	}
}

// Schedule cancels any task pending for key and schedules f.
func (d *debouncer) Schedule(key string, f func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.timers[key]; ok {
		t.Stop()
	}
	d.gen[key]++
	gen := d.gen[key]
	d.timers[key] = d.sched.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.gen[key] != gen {
			d.mu.Unlock()
			return
		}
		delete(d.timers, key)
		d.mu.Unlock()
		f()
	})
}

// Cancel drops the task pending for key and reports whether there was one.
func (d *debouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, ok := d.timers[key]
	if !ok {
		return false
	}
	t.Stop()
	delete(d.timers, key)
	d.gen[key]++
	return true
}

// Pending reports whether a task is scheduled for key.
func (d *debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, ok := d.timers[key]
	return ok
}

// Stop cancels every pending task.
func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key, t := range d.timers {
		t.Stop()
		d.gen[key]++
	}
	d.timers = make(map[string]Timer)
}
