package engine

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerCollapsesPerKey(t *testing.T) {
	d := newDebouncer(time.Hour)
	var calls atomic.Int32
	var last atomic.Int32

	for i := 1; i <= 5; i++ {
		v := int32(i)
		d.call("item-1", func() {
			calls.Add(1)
			last.Store(v)
		})
	}
	d.flush()

	if calls.Load() != 1 {
		t.Fatalf("expected 1 call after collapse, got %d", calls.Load())
	}
	if last.Load() != 5 {
		t.Fatalf("latest payload must win, got %d", last.Load())
	}
}

func TestDebouncerKeysAreIndependent(t *testing.T) {
	d := newDebouncer(time.Hour)
	var calls atomic.Int32

	d.call("a", func() { calls.Add(1) })
	d.call("b", func() { calls.Add(1) })
	d.flush()

	if calls.Load() != 2 {
		t.Fatalf("expected both keys to fire, got %d", calls.Load())
	}
}

func TestDebouncerFiresAfterWindow(t *testing.T) {
	d := newDebouncer(5 * time.Millisecond)
	done := make(chan struct{})
	d.call("a", func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("debounced call never fired")
	}
}

func TestDebouncerStopCancels(t *testing.T) {
	d := newDebouncer(time.Hour)
	var calls atomic.Int32
	d.call("a", func() { calls.Add(1) })
	d.stop()
	d.flush()

	if calls.Load() != 0 {
		t.Fatalf("stopped calls must not run, got %d", calls.Load())
	}
}
