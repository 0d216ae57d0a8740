package core

// =============================================================================
// SubmitAndReply: run work on one pool, deliver the reply to another
// =============================================================================

// SubmitAndReply executes task on targetPool and, if it completes without
// panicking, posts reply to replyPool. If task is abandoned, reply is
// abandoned too. A nil replyPool just submits the task.
func SubmitAndReply(targetPool *Pool, task func(), reply func(), replyPool *Pool) {
	if replyPool == nil {
		targetPool.SubmitFunc(task)
		return
	}

	targetPool.Submit(NewTask(
		func() {
			task()
			// Only reached when task did not panic: a panic unwinds past this
			// point into the worker's recovery.
			replyPool.SubmitFunc(reply)
		},
		nil,
	))
}

// =============================================================================
// SubmitWithResult: typed result observation over a future
// =============================================================================

// ResultFuture couples a Future with a typed value. The value is valid once
// the future has resolved.
type ResultFuture[T any] struct {
	future *Future
	value  T
}

// Future returns the underlying completion future.
func (rf *ResultFuture[T]) Future() *Future {
	return rf.future
}

// Result blocks until the work completes and returns its value and error.
// An abandoned task yields ErrAbandoned.
func (rf *ResultFuture[T]) Result() (T, error) {
	rf.future.Wait()
	return rf.value, rf.future.Err()
}

// SubmitWithResult runs fn on the pool and returns a typed future for its
// result. The captured result variable escapes to the heap; the future's
// settlement provides the happens-before edge that publishes it to readers.
func SubmitWithResult[T any](pool *Pool, fn func() (T, error)) *ResultFuture[T] {
	promise := NewPromise()
	rf := &ResultFuture[T]{future: promise.Future()}

	pool.Submit(NewTask(
		func() {
			value, err := fn()
			rf.value = value
			if err != nil {
				promise.Fail(err)
			} else {
				promise.Resolve()
			}
		},
		func() {
			promise.Cancel()
		},
	))
	return rf
}

// SubmitDelayedWithResult is SubmitWithResult gated on a timer future.
func SubmitDelayedWithResult[T any](pool *Pool, fn func() (T, error), timer *Future) *ResultFuture[T] {
	promise := NewPromise()
	rf := &ResultFuture[T]{future: promise.Future()}

	pool.SubmitDelayed(NewTask(
		func() {
			value, err := fn()
			rf.value = value
			if err != nil {
				promise.Fail(err)
			} else {
				promise.Resolve()
			}
		},
		func() {
			promise.Cancel()
		},
	), timer)
	return rf
}
