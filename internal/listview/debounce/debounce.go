// Package debounce coalesces bursts of values into a single settled value
// emitted after a quiet period.
package debounce

import (
	"sync"
	"time"
)

// Debouncer emits the most recently observed value once no new value has
// been observed for the configured delay.
//
// Every Observe bumps a generation counter. A timer only emits when its
// generation is still the latest one, so a timer that fired concurrently
// with a newer Observe never delivers a stale value.
type Debouncer[T any] struct {
	mu       sync.Mutex
	delay    time.Duration
	onSettle func(T)

	timer      *time.Timer
	generation uint64
	value      T
	pending    bool
	stopped    bool
}

// New creates a debouncer calling onSettle with each settled value.
// onSettle runs on the timer goroutine unless delay is zero or negative,
// in which case it runs synchronously inside Observe.
func New[T any](delay time.Duration, onSettle func(T)) *Debouncer[T] {
	return &Debouncer[T]{
		delay:    delay,
		onSettle: onSettle,
	}
}

// Observe records v and restarts the quiet period
func (d *Debouncer[T]) Observe(v T) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.generation++
	d.value = v
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	if d.delay <= 0 {
		d.pending = false
		d.mu.Unlock()
		d.emit(v)
		return
	}

	d.pending = true
	gen := d.generation
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
	d.mu.Unlock()
}

// Flush emits the pending value immediately, if any
func (d *Debouncer[T]) Flush() {
	d.mu.Lock()
	if d.stopped || !d.pending {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.generation++
	d.pending = false
	v := d.value
	d.mu.Unlock()

	d.emit(v)
}

// Stop cancels a pending emission; later Observe calls are ignored
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.pending = false
	d.generation++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Pending reports whether a value is waiting for its quiet period to end
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Value returns the most recently observed value
func (d *Debouncer[T]) Value() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.generation {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.timer = nil
	v := d.value
	d.mu.Unlock()

	d.emit(v)
}

func (d *Debouncer[T]) emit(v T) {
	if d.onSettle != nil {
		d.onSettle(v)
	}
}
