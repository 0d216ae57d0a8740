package core

import (
	"sync/atomic"
	"testing"
	"time"
)

func newTestScheduler() *Scheduler {
	cfg := DefaultConfig()
	cfg.Name = "test-scheduler"
	cfg.RejectedTaskHandler = &silentRejectedHandler{}
	return NewSchedulerWithConfig(cfg)
}

// TestScheduler_DeadlineOrder verifies earliest-deadline-first execution
// Given: tasks submitted with deadlines T+30, T+10, T+20 ms, out of order
// When: the deadlines pass
// Then: execution order is +10, +20, +30
func TestScheduler_DeadlineOrder(t *testing.T) {
	s := newTestScheduler()
	defer s.Close()

	now := time.Now()
	results := make(chan int, 3)

	s.Submit(TaskFunc(func() { results <- 30 }), now.Add(30*time.Millisecond))
	s.Submit(TaskFunc(func() { results <- 10 }), now.Add(10*time.Millisecond))
	s.Submit(TaskFunc(func() { results <- 20 }), now.Add(20*time.Millisecond))

	expected := []int{10, 20, 30}
	for i, want := range expected {
		select {
		case got := <-results:
			if got != want {
				t.Errorf("step %d: executed %d, want %d", i, got, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("scheduled task did not execute")
		}
	}
}

// TestScheduler_NeverFiresEarly verifies the deadline lower bound
// Given: a task scheduled 50ms out
// When: it executes
// Then: execution time is at or after the deadline
func TestScheduler_NeverFiresEarly(t *testing.T) {
	s := newTestScheduler()
	defer s.Close()

	deadline := time.Now().Add(50 * time.Millisecond)
	fired := make(chan time.Time, 1)
	s.Submit(TaskFunc(func() { fired <- time.Now() }), deadline)

	select {
	case at := <-fired:
		if at.Before(deadline) {
			t.Errorf("task fired %v before its deadline", deadline.Sub(at))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled task did not execute")
	}
}

// TestScheduler_PastDeadline verifies immediate eligibility
// Given: a task with a deadline already in the past
// When: submitted
// Then: it executes on the next loop iteration
func TestScheduler_PastDeadline(t *testing.T) {
	s := newTestScheduler()
	defer s.Close()

	ran := make(chan struct{})
	s.Submit(TaskFunc(func() { close(ran) }), time.Now().Add(-time.Second))

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("past-deadline task did not execute")
	}
}

// TestScheduler_TieBreakBySubmissionOrder verifies deterministic ties
// Given: three tasks sharing one deadline
// When: they execute
// Then: they run in submission order
func TestScheduler_TieBreakBySubmissionOrder(t *testing.T) {
	s := newTestScheduler()
	defer s.Close()

	at := time.Now().Add(20 * time.Millisecond)
	results := make(chan int, 3)
	for i := range 3 {
		i := i
		s.Submit(TaskFunc(func() { results <- i }), at)
	}

	for want := range 3 {
		select {
		case got := <-results:
			if got != want {
				t.Errorf("tie order: got %d, want %d", got, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("tied task did not execute")
		}
	}
}

// TestScheduler_SubmitAfter verifies the relative-deadline convenience
// Given: a task submitted 20ms out via SubmitAfter
// When: the delay elapses
// Then: the task executes
func TestScheduler_SubmitAfter(t *testing.T) {
	s := newTestScheduler()
	defer s.Close()

	ran := make(chan struct{})
	s.SubmitAfterFunc(func() { close(ran) }, 20*time.Millisecond)

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not execute")
	}
}

// TestScheduler_Clear verifies cancellation of pending work
// Given: tasks pending far in the future
// When: Clear is called
// Then: every task is abandoned and none executes
func TestScheduler_Clear(t *testing.T) {
	s := newTestScheduler()
	defer s.Close()

	var executed, abandoned atomic.Int32
	for range 5 {
		s.SubmitAfter(NewTask(
			func() { executed.Add(1) },
			func() { abandoned.Add(1) },
		), time.Hour)
	}

	s.Clear()

	if got := abandoned.Load(); got != 5 {
		t.Errorf("abandoned = %d, want 5", got)
	}
	if got := executed.Load(); got != 0 {
		t.Errorf("executed = %d, want 0", got)
	}
	if got := s.Stats().Pending; got != 0 {
		t.Errorf("Stats().Pending after Clear = %d, want 0", got)
	}

	// the scheduler still works after Clear
	ran := make(chan struct{})
	s.SubmitAfterFunc(func() { close(ran) }, time.Millisecond)
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("scheduler dead after Clear")
	}
}

// TestScheduler_Close_AbandonsPending verifies destructor semantics
// Given: a scheduler with N pending tasks
// When: Close is called
// Then: all N are abandoned and the scheduler goroutine exits
func TestScheduler_Close_AbandonsPending(t *testing.T) {
	s := newTestScheduler()

	var abandoned atomic.Int32
	for range 7 {
		s.SubmitAfter(NewTask(func() {}, func() { abandoned.Add(1) }), time.Hour)
	}

	done := make(chan struct{})
	go func() {
		s.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return")
	}

	if got := abandoned.Load(); got != 7 {
		t.Errorf("abandoned = %d, want 7", got)
	}
	if !s.Stats().Stopped {
		t.Error("Stats().Stopped = false after Close")
	}
}

// TestScheduler_Close_Idempotent verifies repeat Close
// Given: a closed scheduler
// When: Close is called again
// Then: it returns without hanging
func TestScheduler_Close_Idempotent(t *testing.T) {
	s := newTestScheduler()
	s.Close()

	done := make(chan struct{})
	go func() {
		s.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second Close hung")
	}
}

// TestScheduler_SubmitAfterClose verifies post-shutdown rejection
// Given: a closed scheduler
// When: a task is submitted
// Then: it is abandoned and never executes
func TestScheduler_SubmitAfterClose(t *testing.T) {
	s := newTestScheduler()
	s.Close()

	var executed, abandoned atomic.Int32
	s.SubmitAfter(NewTask(
		func() { executed.Add(1) },
		func() { abandoned.Add(1) },
	), time.Millisecond)

	if got := abandoned.Load(); got != 1 {
		t.Errorf("abandoned = %d, want 1", got)
	}
	if got := executed.Load(); got != 0 {
		t.Errorf("executed = %d, want 0", got)
	}
}

// TestScheduler_PanicDoesNotKillLoop verifies loop survival
// Given: a scheduler task that panics
// When: a later task is scheduled
// Then: the later task still executes
func TestScheduler_PanicDoesNotKillLoop(t *testing.T) {
	handler := &recordingPanicHandler{}
	cfg := DefaultConfig()
	cfg.Name = "panic-scheduler"
	cfg.PanicHandler = handler
	s := NewSchedulerWithConfig(cfg)
	defer s.Close()

	s.SubmitAfterFunc(func() { panic("boom") }, time.Millisecond)

	ran := make(chan struct{})
	s.SubmitAfterFunc(func() { close(ran) }, 10*time.Millisecond)

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler loop did not survive the panic")
	}
	if got := handler.count.Load(); got != 1 {
		t.Errorf("panic handler calls = %d, want 1", got)
	}
}
