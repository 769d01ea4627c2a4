package frog

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestAsyncObserverNeverBlocks(t *testing.T) {
	release := make(chan struct{})
	var seen atomic.Int64
	a := Async(ObserverFunc(func(p Progress) {
		<-release
		seen.Add(1)
	}), 2)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			a.Observe(Progress{Iteration: i})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Observe blocked on a stalled consumer")
	}
	close(release)
	a.Close()

	if a.Dropped() == 0 {
		t.Error("expected dropped notifications")
	}
	if got := seen.Load() + a.Dropped(); got != 100 {
		t.Errorf("delivered+dropped = %d, want 100", got)
	}
}

func TestNewProgressCopies(t *testing.T) {
	trace := [][]float64{{1, 2}, {3, 4}}
	delays := []float64{-1, 0}
	p := NewProgress(3, 0.5, trace, []complex128{1, 1i}, delays, delays)
	trace[0][0] = 9
	delays[0] = 9
	if p.Trace[0][0] != 1 || p.Delays[0] != -1 {
		t.Error("progress shares buffers with the solver")
	}
	if p.Iteration != 3 || p.Error != 0.5 || len(p.TimeIntensity) != 2 {
		t.Errorf("unexpected progress %+v", p)
	}
}

func TestStatusString(t *testing.T) {
	tests := map[Status]string{
		Converged:      "converged",
		MaxIterReached: "max_iter_reached",
		Cancelled:      "cancelled",
		Failed:         "failed",
	}
	for s, want := range tests {
		if s.String() != want {
			t.Errorf("%d: %q, want %q", int(s), s.String(), want)
		}
	}
}
