package core

import (
	"container/list"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// Pool executes submitted tasks on a fixed-but-resizable set of worker
// goroutines. Tasks are pulled FIFO from a ready queue; delayed tasks enter
// the queue when their timer future fires. A single mutex covers the worker
// bookkeeping, the ready queue and the delayed-bridge list; one condition
// variable is signalled on new ready work, stop requests and shutdown
// progress.
type Pool struct {
	mu   *sync.Mutex
	cond *sync.Cond

	// workers holds one handle per live goroutine. The suffix of length
	// pending are workers that have been asked to stop but have not been
	// observed finished yet.
	workers []*worker
	pending int

	tasks        taskQueue
	delayed      *list.List // of *delayedTaskBridge
	delayedCount int

	closed       bool
	nextWorkerID int

	active atomic.Int32 // tasks currently executing

	name     string
	logger   Logger
	panics   PanicHandler
	metrics  Metrics
	rejected RejectedTaskHandler
	history  executionHistory
}

// worker owns one goroutine and a stop flag. The done future resolves when
// the goroutine exits; joining a worker is waiting on that future.
type worker struct {
	id   int
	stop atomic.Bool
	done *Promise
}

// stopRequest sets the stop flag, returning its previous value.
func (w *worker) stopRequest() bool {
	return w.stop.Swap(true)
}

// finished reports whether the worker goroutine has exited.
func (w *worker) finished() bool {
	return w.done.Future().Ready()
}

// NewPool creates a pool with n workers and default configuration.
func NewPool(n int) *Pool {
	return NewPoolWithConfig(n, nil)
}

// NewPoolWithConfig creates a pool with n workers. config may be nil.
func NewPoolWithConfig(n int, config *Config) *Pool {
	cfg := config.withDefaults("pool")

	// The mutex and the delayed list are separate allocations so that the
	// Pool holds no pointer back into itself and can be finalized once closed.
	p := &Pool{
		mu:       &sync.Mutex{},
		delayed:  list.New(),
		tasks:    newTaskQueue(),
		name:     cfg.Name,
		logger:   cfg.Logger,
		panics:   cfg.PanicHandler,
		metrics:  cfg.Metrics,
		rejected: cfg.RejectedTaskHandler,
		history:  newExecutionHistory(cfg.HistoryCapacity),
	}
	p.cond = sync.NewCond(p.mu)

	p.SetNWorkers(n)
	return p
}

// Name returns the pool's configured name.
func (p *Pool) Name() string {
	return p.name
}

// NWorkers returns the logical worker count: handles that have been asked to
// stop are excluded.
func (p *Pool) NWorkers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.workers) - p.pending
}

// SetNWorkers resizes the pool to n workers. Growing starts new goroutines
// immediately and returns a ready future. Shrinking marks the surplus workers
// stopping and returns a future that resolves once every one of them has
// exited. SetNWorkers to the current size is a no-op with a ready future.
func (p *Pool) SetNWorkers(n int) *Future {
	if n < 0 {
		n = 0
	}

	p.mu.Lock()
	old := len(p.workers) - p.pending
	if n == old {
		p.mu.Unlock()
		return MakeReadyFuture()
	}

	if n > old {
		// Grow: first compact the stopping suffix, dropping workers whose
		// goroutine has already exited, then start the shortfall.
		var stopping []*worker
		for _, w := range p.workers[old:] {
			if !w.finished() {
				stopping = append(stopping, w)
			}
		}
		p.pending = len(stopping)

		workers := make([]*worker, 0, n+len(stopping))
		workers = append(workers, p.workers[:old]...)
		for i := old; i < n; i++ {
			workers = append(workers, p.startWorker())
		}
		p.workers = append(workers, stopping...)

		p.logger.Debug("pool resized", F("pool", p.name), F("workers", n))
		p.mu.Unlock()
		return MakeReadyFuture()
	}

	// Shrink: the surplus workers join the stopping suffix. The aggregate
	// future is built before the stop flags are set so a fast exit cannot be
	// missed.
	surplus := p.workers[n:old]
	p.pending += old - n

	futures := make([]*Future, len(surplus))
	for i, w := range surplus {
		futures[i] = w.done.Future()
	}
	all := WhenAll(futures...)

	for _, w := range surplus {
		w.stopRequest()
	}

	p.logger.Debug("pool resized", F("pool", p.name), F("workers", n))
	p.mu.Unlock()
	p.cond.Broadcast()

	return all.Then(func(*Future) {})
}

// startWorker allocates a worker handle and launches its goroutine.
// Caller must hold p.mu.
func (p *Pool) startWorker() *worker {
	w := &worker{id: p.nextWorkerID, done: NewPromise()}
	p.nextWorkerID++

	go func() {
		p.workerLoop(w)
		// mark ready on exit
		w.done.Resolve()
	}()
	return w
}

// workerLoop pulls tasks from the ready queue until the worker's stop flag is
// observed. Wake-ups may be spurious: both the stop flag and the queue are
// reevaluated after every wait. Tasks execute outside the lock.
func (p *Pool) workerLoop(w *worker) {
	p.mu.Lock()
	for {
		if w.stop.Load() {
			p.mu.Unlock()
			return
		}

		if task, ok := p.tasks.popFront(); ok {
			p.mu.Unlock()
			p.runTask(task, w.id)
			p.mu.Lock()
			continue
		}

		p.cond.Wait()
	}
}

// runTask executes a task outside the pool lock, recovering panics and
// recording metrics and history. A panicking task counts as completed; the
// worker survives.
func (p *Pool) runTask(task Task, workerID int) {
	p.active.Add(1)
	start := time.Now()
	panicked := true

	func() {
		defer func() {
			p.active.Add(-1)
			if r := recover(); r != nil {
				p.panics.HandlePanic(p.name, workerID, r, debug.Stack())
				p.metrics.RecordTaskPanic(p.name, r)
			}
		}()
		task.Execute()
		panicked = false
	}()

	finish := time.Now()
	p.metrics.RecordTaskDuration(p.name, finish.Sub(start))
	p.history.Add(TaskExecutionRecord{
		Name:       taskName(task),
		EngineName: p.name,
		StartedAt:  start,
		FinishedAt: finish,
		Duration:   finish.Sub(start),
		Panicked:   panicked,
	})
}

// Submit appends a task to the ready queue and wakes one worker. Ownership of
// the task moves into the pool until it is executed or abandoned. Submitting
// to a closed pool rejects and abandons the task.
func (p *Pool) Submit(task Task) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.reject(task, "closed")
		return
	}
	p.tasks.pushBack(task)
	p.cond.Signal()
	p.mu.Unlock()
}

// SubmitFunc submits a bare function as a task.
func (p *Pool) SubmitFunc(fn func()) {
	p.Submit(TaskFunc(fn))
}

// SubmitDelayed holds a task aside until the timer future completes, then
// moves it into the ready queue. If the pool is cleared or closed first, the
// task is abandoned instead. A timer future that is already ready promotes
// the task synchronously.
func (p *Pool) SubmitDelayed(task Task, timer *Future) {
	bridge := &delayedTaskBridge{owner: p, task: task}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.reject(task, "closed")
		return
	}
	bridge.elem = p.delayed.PushBack(bridge)
	p.mu.Unlock()

	timer.OnComplete(bridge.continuate)
}

// SubmitDelayedFunc submits a bare function to run after the delay.
func (p *Pool) SubmitDelayedFunc(fn func(), delay time.Duration) {
	p.SubmitDelayed(TaskFunc(fn), After(delay))
}

func (p *Pool) reject(task Task, reason string) {
	p.rejected.HandleRejectedTask(p.name, reason)
	p.metrics.RecordTaskRejected(p.name, reason)
	task.Abandon()
}

// Clear cancels all outstanding work, ready and delayed, without stopping the
// workers. Already-running tasks run to completion. Delayed bridges race the
// clear via their mark latch: bridges the clear claims are abandoned in
// place; bridges whose timer won are counted and waited for, then the ready
// queue (now containing their promoted tasks) is swapped out and abandoned.
//
// Clear is single-caller: concurrent Clear calls are not supported.
func (p *Pool) Clear() {
	p.mu.Lock()

	for e := p.delayed.Front(); e != nil; {
		next := e.Next()
		bridge := e.Value.(*delayedTaskBridge)
		if bridge.markMarked() {
			p.delayed.Remove(e)
			bridge.elem = nil
			bridge.abandon()
		} else {
			// The timer fired first; its continuation is mid-flight and will
			// unlink the bridge itself. Count it into the shutdown barrier.
			p.delayedCount++
		}
		e = next
	}

	// Wait until all in-flight bridge promotions have drained, then take the
	// pending tasks.
	for p.delayedCount > 0 {
		p.cond.Wait()
	}
	tasks := p.tasks.takeAll()
	p.mu.Unlock()

	for _, task := range tasks {
		task.Abandon()
	}

	p.logger.Debug("pool cleared", F("pool", p.name), F("abandoned", len(tasks)))
}

// Close stops all workers, cancels all outstanding work and waits for every
// worker goroutine to exit. Stop flags are set before delayed work is
// cleared, so a timer firing concurrently cannot resurrect a task after the
// pool is declared quiescent. Close returns only when every task the pool
// ever held has been executed or abandoned exactly once.
func (p *Pool) Close() {
	p.mu.Lock()
	workers := p.workers
	p.workers = nil
	p.pending = 0
	p.closed = true
	p.mu.Unlock()

	// signal goroutines to stop
	for _, w := range workers {
		w.stopRequest()
	}

	// wake goroutines if they are sleeping/waiting
	p.cond.Broadcast()

	// clear and abandon any tasks, including delayed ones
	p.Clear()

	// wait until goroutines are stopped
	for _, w := range workers {
		w.done.Future().Wait()
	}

	p.logger.Debug("pool closed", F("pool", p.name))
}

// Stats returns a snapshot of the pool's runtime state.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PoolStats{
		Name:     p.name,
		Workers:  len(p.workers) - p.pending,
		Stopping: p.pending,
		Queued:   p.tasks.len(),
		Active:   int(p.active.Load()),
		Delayed:  p.delayed.Len(),
		Closed:   p.closed,
	}
}

// RecentTasks returns up to limit recent execution records, newest first.
func (p *Pool) RecentTasks(limit int) []TaskExecutionRecord {
	return p.history.Recent(limit)
}
