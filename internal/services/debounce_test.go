package services

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerRunsOnlySettledTask(t *testing.T) {
	debouncer := NewDebouncer(30 * time.Millisecond)

	var first, second atomic.Int32
	debouncer.Schedule(func() { first.Add(1) })
	debouncer.Schedule(func() { second.Add(1) })

	time.Sleep(120 * time.Millisecond)
	if first.Load() != 0 {
		t.Fatalf("superseded task must be cancelled, ran %d times", first.Load())
	}
	if second.Load() != 1 {
		t.Fatalf("settled task must run exactly once, ran %d times", second.Load())
	}
}

func TestDebouncerCancelDropsPendingTask(t *testing.T) {
	debouncer := NewDebouncer(30 * time.Millisecond)

	var ran atomic.Int32
	debouncer.Schedule(func() { ran.Add(1) })
	debouncer.Cancel()

	time.Sleep(120 * time.Millisecond)
	if ran.Load() != 0 {
		t.Fatalf("cancelled task must not run, ran %d times", ran.Load())
	}
}

func TestDebouncerReschedulesAfterRun(t *testing.T) {
	debouncer := NewDebouncer(20 * time.Millisecond)

	var ran atomic.Int32
	debouncer.Schedule(func() { ran.Add(1) })
	time.Sleep(100 * time.Millisecond)
	debouncer.Schedule(func() { ran.Add(1) })
	time.Sleep(100 * time.Millisecond)

	if ran.Load() != 2 {
		t.Fatalf("expected both settled tasks to run, got %d", ran.Load())
	}
}
