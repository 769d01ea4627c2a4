package frog

import "errors"
import "fmt"
import "sync"
import "sync/atomic"

// ErrInvalidConfig reports a solver or run configuration outside its domain.
var ErrInvalidConfig = errors.New("invalidConfig")

// Status is the state of a solver run.
type Status int

const (
	Initializing Status = iota
	Iterating
	// Converged means the error reached the tolerance.
	Converged
	// MaxIterReached means the iteration cap ended the run. It is not an error.
	MaxIterReached
	// Cancelled means the context stopped the run; the result holds the best estimate so far.
	Cancelled
	Failed
)

func (s Status) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Iterating:
		return "iterating"
	case Converged:
		return "converged"
	case MaxIterReached:
		return "max_iter_reached"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result is what a solver hands back when it stops.
type Result struct {
	Status     Status
	Field      []complex128 // unit norm
	Trace      [][]float64  // reconstructed trace on the measured intensity scale
	Error      float64
	Iterations int
	Delays     []float64
	Freqs      []float64
}

// Progress is one per-iteration notification. Every slice is a fresh copy
// owned by the receiver.
type Progress struct {
	Iteration int
	Error     float64
	Trace     [][]float64
	Profiles
	Delays []float64
	Freqs  []float64
}

// Observer receives progress. Observe must return promptly and must not call
// back into the solver; wrap slow consumers with Async.
type Observer interface {
	Observe(Progress)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Progress)

func (f ObserverFunc) Observe(p Progress) { f(p) }

type discard struct{}

func (discard) Observe(Progress) {}

// Discard drops every notification.
var Discard Observer = discard{}

// NewProgress assembles a progress notification, copying every input.
func NewProgress(iter int, g float64, trace [][]float64, pt []complex128, delays, freqs []float64) Progress {
	return Progress{
		Iteration: iter,
		Error:     g,
		Trace:     Copy(trace),
		Profiles:  NewProfiles(pt),
		Delays:    append([]float64(nil), delays...),
		Freqs:     append([]float64(nil), freqs...),
	}
}

// AsyncObserver forwards progress to another observer from its own goroutine.
// Observe never blocks: when the buffer is full the notification is dropped.
type AsyncObserver struct {
	ch      chan Progress
	done    chan struct{}
	once    sync.Once
	dropped atomic.Int64
}

// Async starts forwarding to obs with room for buffer pending notifications.
func Async(obs Observer, buffer int) *AsyncObserver {
	if buffer < 1 {
		buffer = 1
	}
	a := &AsyncObserver{ch: make(chan Progress, buffer), done: make(chan struct{})}
	go func() {
		defer close(a.done)
		for p := range a.ch {
			obs.Observe(p)
		}
	}()
	return a
}

func (a *AsyncObserver) Observe(p Progress) {
	select {
	case a.ch <- p:
	default:
		a.dropped.Add(1)
	}
}

// Dropped reports how many notifications were discarded.
func (a *AsyncObserver) Dropped() int64 {
	return a.dropped.Load()
}

// Close stops accepting notifications and waits until the pending ones are
// delivered. Observe must not be called after Close.
func (a *AsyncObserver) Close() {
	a.once.Do(func() { close(a.ch) })
	<-a.done
}
