package core

import (
	"errors"
	"sync"
	"time"
)

// ErrAbandoned is the settlement error of a future whose work was cancelled
// before it could run.
var ErrAbandoned = errors.New("taskpool: abandoned")

// FutureState represents the lifecycle state of a Future.
// A future starts Pending and settles exactly once into Resolved, Failed or
// Cancelled. Transitions are irreversible.
type FutureState int32

const (
	// FuturePending indicates the operation has not completed yet.
	FuturePending FutureState = iota

	// FutureResolved indicates the operation completed successfully.
	FutureResolved

	// FutureFailed indicates the operation completed with an error.
	FutureFailed

	// FutureCancelled indicates the operation was abandoned and will never run.
	FutureCancelled
)

// =============================================================================
// Future: read-only view of an asynchronous completion
// =============================================================================

// Future is a one-shot completion notification. Continuations attached with
// OnComplete run on whatever goroutine settles the future (synchronously at
// attach time if the future is already settled).
//
// The engines use futures for worker termination, delayed-task timers and the
// return value of Pool.SetNWorkers.
type Future struct {
	mu            sync.Mutex
	state         FutureState
	err           error
	done          chan struct{}
	continuations []func(*Future)
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// State returns the current FutureState.
func (f *Future) State() FutureState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Ready reports whether the future has settled.
func (f *Future) Ready() bool {
	return f.State() != FuturePending
}

// Cancelled reports whether the future settled as cancelled.
func (f *Future) Cancelled() bool {
	return f.State() == FutureCancelled
}

// Err returns the settlement error: nil for a resolved future, ErrAbandoned
// for a cancelled one, the failure error otherwise. Returns nil while pending.
func (f *Future) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Wait blocks until the future settles.
func (f *Future) Wait() {
	<-f.done
}

// WaitFor blocks until the future settles or the duration elapses.
// Reports whether the future settled in time.
func (f *Future) WaitFor(d time.Duration) bool {
	select {
	case <-f.done:
		return true
	case <-time.After(d):
		return false
	}
}

// Done returns a channel closed when the future settles.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// OnComplete attaches a one-shot continuation. It is invoked on the settling
// goroutine, or synchronously on the calling goroutine if the future has
// already settled.
func (f *Future) OnComplete(fn func(*Future)) {
	f.mu.Lock()
	if f.state != FuturePending {
		f.mu.Unlock()
		fn(f)
		return
	}
	f.continuations = append(f.continuations, fn)
	f.mu.Unlock()
}

// Then attaches a continuation and returns a future that settles, mirroring
// this future's state, once the continuation has returned.
func (f *Future) Then(fn func(*Future)) *Future {
	child := newFuture()
	f.OnComplete(func(parent *Future) {
		fn(parent)
		child.settle(parent.State(), parent.Err())
	})
	return child
}

// settle transitions the future out of Pending. First settlement wins; later
// calls are no-ops. Continuations run on the calling goroutine, outside the
// future's lock.
func (f *Future) settle(state FutureState, err error) bool {
	f.mu.Lock()
	if f.state != FuturePending {
		f.mu.Unlock()
		return false
	}
	f.state = state
	f.err = err
	continuations := f.continuations
	f.continuations = nil
	close(f.done)
	f.mu.Unlock()

	for _, fn := range continuations {
		fn(f)
	}
	return true
}

// =============================================================================
// Promise: the producer side of a Future
// =============================================================================

// Promise is the write side of a Future. Exactly one of Resolve, Fail or
// Cancel takes effect; the rest are no-ops.
type Promise struct {
	future *Future
}

// NewPromise creates a pending promise/future pair.
func NewPromise() *Promise {
	return &Promise{future: newFuture()}
}

// Future returns the read side of the promise.
func (p *Promise) Future() *Future {
	return p.future
}

// Resolve settles the future successfully.
func (p *Promise) Resolve() bool {
	return p.future.settle(FutureResolved, nil)
}

// Fail settles the future with an error.
func (p *Promise) Fail(err error) bool {
	return p.future.settle(FutureFailed, err)
}

// Cancel settles the future as abandoned.
func (p *Promise) Cancel() bool {
	return p.future.settle(FutureCancelled, ErrAbandoned)
}

// =============================================================================
// Constructors and combinators
// =============================================================================

// MakeReadyFuture returns an already-resolved future.
func MakeReadyFuture() *Future {
	f := newFuture()
	f.settle(FutureResolved, nil)
	return f
}

// After returns a future that resolves once the duration has elapsed.
// Continuations fire on the timer goroutine.
func After(d time.Duration) *Future {
	p := NewPromise()
	if d <= 0 {
		p.Resolve()
		return p.Future()
	}
	time.AfterFunc(d, func() { p.Resolve() })
	return p.Future()
}

// WhenAll returns a future that resolves once every input future has settled,
// regardless of how each one settled. With no inputs it is immediately ready.
func WhenAll(futures ...*Future) *Future {
	if len(futures) == 0 {
		return MakeReadyFuture()
	}

	var mu sync.Mutex
	remaining := len(futures)
	agg := NewPromise()

	for _, f := range futures {
		f.OnComplete(func(*Future) {
			mu.Lock()
			remaining--
			last := remaining == 0
			mu.Unlock()
			if last {
				agg.Resolve()
			}
		})
	}
	return agg.Future()
}
