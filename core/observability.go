package core

import "time"

// TaskExecutionRecord captures a completed task execution event.
type TaskExecutionRecord struct {
	Name       string
	EngineName string
	StartedAt  time.Time
	FinishedAt time.Time
	Duration   time.Duration
	Panicked   bool
}

// PoolStats represents runtime observability state for a worker pool.
type PoolStats struct {
	Name     string
	Workers  int // logical worker count, stopping suffix excluded
	Stopping int // workers asked to stop but not yet joined
	Queued   int // tasks in the ready FIFO
	Active   int // tasks currently executing
	Delayed  int // outstanding delayed-task bridges
	Closed   bool
}

// SchedulerStats represents runtime observability state for a scheduler.
type SchedulerStats struct {
	Name    string
	Pending int // tasks waiting for their deadline
	Stopped bool
}
