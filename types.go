package taskpool

import "github.com/dmlys/taskpool/core"

// Re-export commonly used types from core package for convenience.
// This allows users to import only the taskpool package for most use cases.

// Task is the unit of work exposing Execute and Abandon
type Task = core.Task

// TaskFunc adapts a bare function to a Task
type TaskFunc = core.TaskFunc

// NamedTask attaches a name to a task for history and diagnostics
type NamedTask = core.NamedTask

// FutureTask couples a task with an observable completion future
type FutureTask = core.FutureTask

// Future is a one-shot completion notification
type Future = core.Future

// Promise is the producer side of a Future
type Promise = core.Promise

// FutureState is the lifecycle state of a Future
type FutureState = core.FutureState

// Pool is the resizable worker-pool engine
type Pool = core.Pool

// Scheduler is the deadline-driven single-goroutine engine
type Scheduler = core.Scheduler

// Config carries the ambient handlers shared by both engines
type Config = core.Config

// Logger is the structured logging interface
type Logger = core.Logger

// PanicHandler handles task panics
type PanicHandler = core.PanicHandler

// Metrics records task execution metrics
type Metrics = core.Metrics

// RejectedTaskHandler handles post-shutdown submissions
type RejectedTaskHandler = core.RejectedTaskHandler

// PoolStats is a runtime snapshot of a Pool
type PoolStats = core.PoolStats

// SchedulerStats is a runtime snapshot of a Scheduler
type SchedulerStats = core.SchedulerStats

// Future state constants
const (
	FuturePending   = core.FuturePending
	FutureResolved  = core.FutureResolved
	FutureFailed    = core.FutureFailed
	FutureCancelled = core.FutureCancelled
)

// Sentinel errors
var (
	ErrAbandoned    = core.ErrAbandoned
	ErrTaskPanicked = core.ErrTaskPanicked
)

// Constructors and combinators re-exported from core
var (
	NewPool                = core.NewPool
	NewPoolWithConfig      = core.NewPoolWithConfig
	NewScheduler           = core.NewScheduler
	NewSchedulerWithConfig = core.NewSchedulerWithConfig
	NewTask                = core.NewTask
	NewFutureTask          = core.NewFutureTask
	Named                  = core.Named
	NamedFunc              = core.NamedFunc
	NewPromise             = core.NewPromise
	MakeReadyFuture        = core.MakeReadyFuture
	After                  = core.After
	WhenAll                = core.WhenAll
	DefaultConfig          = core.DefaultConfig
	SubmitAndReply         = core.SubmitAndReply
	F                      = core.F
)
