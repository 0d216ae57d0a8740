package core

import (
	"container/list"
	"sync/atomic"
)

// delayedTaskBridge couples a timer future to the pool. It lives in the
// pool's delayed list from submission until either the timer fires and the
// task is promoted into the ready queue, or the pool abandons it via Clear.
//
// The marked latch arbitrates the race between the two: whichever side wins
// the compare-and-swap owns the bridge; the loser does nothing beyond
// returning. The winning side mutates the pool's lists only under the pool
// mutex.
type delayedTaskBridge struct {
	owner  *Pool
	task   Task
	elem   *list.Element
	marked atomic.Bool
}

// markMarked attempts to claim the bridge. Only the first caller succeeds.
func (b *delayedTaskBridge) markMarked() bool {
	return b.marked.CompareAndSwap(false, true)
}

// continuate is installed as the completion continuation of the timer future
// and runs on whatever goroutine completes it — possibly a worker of the same
// pool, so it must not be called with the pool lock held.
func (b *delayedTaskBridge) continuate(*Future) {
	if !b.markMarked() {
		// pool claimed the bridge first: it is being cleared or closed
		return
	}

	// remove ourselves from the delayed list and promote the task into the
	// ready queue
	p := b.owner
	p.mu.Lock()

	p.delayed.Remove(b.elem)
	b.elem = nil
	p.tasks.pushBack(b.task)
	b.task = nil

	notify := p.delayedCount == 0
	if !notify {
		p.delayedCount--
		notify = p.delayedCount == 0
	}

	// Notify the pool if needed.
	// NOTE: the notify has to happen under the lock, otherwise the pool can
	// be destroyed between the mutex release and the signal, leaving owner
	// dangling. While this situation is very rare - it can happen.
	// See Clear and Close.
	if notify {
		p.cond.Broadcast()
	}

	p.mu.Unlock()
}

// abandon notifies the held task that it will never run.
// Caller must have claimed the bridge.
func (b *delayedTaskBridge) abandon() {
	b.task.Abandon()
	b.task = nil
}
