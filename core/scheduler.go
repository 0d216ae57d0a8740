package core

import (
	"container/heap"
	"math"
	"runtime/debug"
	"sync"
	"time"
)

// maxIdleWait bounds the scheduler's sleep when the heap is empty. Half the
// representable maximum: some timer implementations overflow when asked to
// wait until the maximum time point, and half of forever is still forever.
const maxIdleWait = time.Duration(math.MaxInt64 / 2)

// scheduledTask is a heap entry: a task plus its absolute deadline. seq
// breaks deadline ties deterministically by submission order.
type scheduledTask struct {
	task  Task
	at    time.Time
	seq   uint64
	index int
}

// scheduleHeap implements heap.Interface as a min-heap by deadline.
type scheduleHeap []*scheduledTask

func (h scheduleHeap) Len() int { return len(h) }

func (h scheduleHeap) Less(i, j int) bool {
	if !h[i].at.Equal(h[j].at) {
		return h[i].at.Before(h[j].at)
	}
	return h[i].seq < h[j].seq
}

func (h scheduleHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *scheduleHeap) Push(x any) {
	n := len(*h)
	item := x.(*scheduledTask)
	item.index = n
	*h = append(*h, item)
}

func (h *scheduleHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil // avoid memory leak
	item.index = -1
	*h = old[0 : n-1]
	return item
}

// Scheduler defers tasks until an absolute deadline and executes them on its
// own single goroutine, earliest deadline first. It sleeps until the next
// deadline and is woken early when a new front-of-heap task arrives, on
// Clear, and on Close.
type Scheduler struct {
	mu      sync.Mutex
	queue   scheduleHeap
	wakeup  chan struct{}
	stopped bool
	done    chan struct{}
	nextSeq uint64

	name     string
	logger   Logger
	panics   PanicHandler
	metrics  Metrics
	rejected RejectedTaskHandler
	history  executionHistory
}

// NewScheduler creates a scheduler with default configuration and starts its
// goroutine.
func NewScheduler() *Scheduler {
	return NewSchedulerWithConfig(nil)
}

// NewSchedulerWithConfig creates a scheduler. config may be nil.
func NewSchedulerWithConfig(config *Config) *Scheduler {
	cfg := config.withDefaults("scheduler")

	s := &Scheduler{
		wakeup:   make(chan struct{}, 1),
		done:     make(chan struct{}),
		name:     cfg.Name,
		logger:   cfg.Logger,
		panics:   cfg.PanicHandler,
		metrics:  cfg.Metrics,
		rejected: cfg.RejectedTaskHandler,
		history:  newExecutionHistory(cfg.HistoryCapacity),
	}
	heap.Init(&s.queue)

	go s.loop()
	return s
}

// Name returns the scheduler's configured name.
func (s *Scheduler) Name() string {
	return s.name
}

// Submit schedules a task to execute at the given absolute time. A deadline
// at or before now is legal; the task runs on the next loop iteration.
// Submitting to a closed scheduler rejects and abandons the task.
func (s *Scheduler) Submit(task Task, at time.Time) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		s.reject(task, "closed")
		return
	}

	item := &scheduledTask{task: task, at: at, seq: s.nextSeq}
	s.nextSeq++
	heap.Push(&s.queue, item)
	front := item.index == 0
	s.mu.Unlock()

	// Only a new earliest deadline shortens the current sleep.
	if front {
		s.wake()
	}
}

// SubmitAfter schedules a task to execute after the given delay.
func (s *Scheduler) SubmitAfter(task Task, delay time.Duration) {
	s.Submit(task, time.Now().Add(delay))
}

// SubmitFunc schedules a bare function at the given absolute time.
func (s *Scheduler) SubmitFunc(fn func(), at time.Time) {
	s.Submit(TaskFunc(fn), at)
}

// SubmitAfterFunc schedules a bare function after the given delay.
func (s *Scheduler) SubmitAfterFunc(fn func(), delay time.Duration) {
	s.SubmitAfter(TaskFunc(fn), delay)
}

func (s *Scheduler) reject(task Task, reason string) {
	s.rejected.HandleRejectedTask(s.name, reason)
	s.metrics.RecordTaskRejected(s.name, reason)
	task.Abandon()
}

func (s *Scheduler) wake() {
	select {
	case s.wakeup <- struct{}{}:
	default:
	}
}

// loop is the scheduler's single goroutine: execute everything whose deadline
// has passed, then sleep until the next deadline or a wakeup.
func (s *Scheduler) loop() {
	defer close(s.done)

	timer := time.NewTimer(maxIdleWait)
	defer timer.Stop()

	for {
		s.runPassedEvents()

		s.mu.Lock()
		if s.stopped {
			s.mu.Unlock()
			return
		}
		wait := maxIdleWait
		if len(s.queue) > 0 {
			wait = time.Until(s.queue[0].at)
			if wait < 0 {
				wait = 0
			}
		}
		s.mu.Unlock()

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)

		select {
		case <-timer.C:
		case <-s.wakeup:
		}
	}
}

// runPassedEvents pops and executes every task whose deadline is at or before
// now. Tasks execute outside the lock, one at a time, earliest first.
func (s *Scheduler) runPassedEvents() {
	now := time.Now()

	for {
		s.mu.Lock()
		if len(s.queue) == 0 || s.queue[0].at.After(now) {
			s.mu.Unlock()
			return
		}
		item := heap.Pop(&s.queue).(*scheduledTask)
		s.mu.Unlock()

		s.runTask(item.task)
	}
}

// runTask executes a task on the scheduler goroutine, recovering panics.
func (s *Scheduler) runTask(task Task) {
	start := time.Now()
	panicked := true

	func() {
		defer func() {
			if r := recover(); r != nil {
				s.panics.HandlePanic(s.name, -1, r, debug.Stack())
				s.metrics.RecordTaskPanic(s.name, r)
			}
		}()
		task.Execute()
		panicked = false
	}()

	finish := time.Now()
	s.metrics.RecordTaskDuration(s.name, finish.Sub(start))
	s.history.Add(TaskExecutionRecord{
		Name:       taskName(task),
		EngineName: s.name,
		StartedAt:  start,
		FinishedAt: finish,
		Duration:   finish.Sub(start),
		Panicked:   panicked,
	})
}

// Clear abandons every pending task without stopping the scheduler.
func (s *Scheduler) Clear() {
	s.mu.Lock()
	queue := s.queue
	s.queue = nil
	s.mu.Unlock()

	for _, item := range queue {
		item.task.Abandon()
	}
	s.wake()

	s.logger.Debug("scheduler cleared", F("scheduler", s.name), F("abandoned", len(queue)))
}

// Close abandons every pending task, stops the scheduler goroutine and waits
// for it to exit. Close is idempotent.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		<-s.done
		return
	}
	s.stopped = true
	for len(s.queue) > 0 {
		item := heap.Pop(&s.queue).(*scheduledTask)
		item.task.Abandon()
	}
	s.mu.Unlock()

	s.wake()
	<-s.done

	s.logger.Debug("scheduler closed", F("scheduler", s.name))
}

// Stats returns a snapshot of the scheduler's runtime state.
func (s *Scheduler) Stats() SchedulerStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SchedulerStats{
		Name:    s.name,
		Pending: len(s.queue),
		Stopped: s.stopped,
	}
}

// RecentTasks returns up to limit recent execution records, newest first.
func (s *Scheduler) RecentTasks(limit int) []TaskExecutionRecord {
	return s.history.Recent(limit)
}
