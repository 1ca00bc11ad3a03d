package engine

import (
	"sync"
	"time"
)

// debouncer collapses rapid calls per key into a single invocation after a
// quiescence window. A newer call replaces the pending one for the same key;
// different keys fire independently.
type debouncer struct {
	mu      sync.Mutex
	window  time.Duration
	pending map[string]*pendingCall
}

type pendingCall struct {
	timer *time.Timer
	fn    func()
}

func newDebouncer(window time.Duration) *debouncer {
	return &debouncer{window: window, pending: make(map[string]*pendingCall)}
}

func (d *debouncer) call(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.pending[key]; ok {
		prev.timer.Stop()
	}
	pc := &pendingCall{fn: fn}
	pc.timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		if d.pending[key] != pc {
			// superseded after the timer fired but before it ran
			d.mu.Unlock()
			return
		}
		delete(d.pending, key)
		d.mu.Unlock()
		fn()
	})
	d.pending[key] = pc
}

// flush runs every pending call immediately. Used on shutdown and in tests.
func (d *debouncer) flush() {
	d.mu.Lock()
	calls := make([]func(), 0, len(d.pending))
	for key, pc := range d.pending {
		pc.timer.Stop()
		calls = append(calls, pc.fn)
		delete(d.pending, key)
	}
	d.mu.Unlock()

	for _, fn := range calls {
		fn()
	}
}

// stop cancels every pending call without running it.
func (d *debouncer) stop() {
	d.mu.Lock()
	for key, pc := range d.pending {
		pc.timer.Stop()
		delete(d.pending, key)
	}
	d.mu.Unlock()
}
