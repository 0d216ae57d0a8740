// Package taskpool provides a task-execution substrate built from two
// cooperating engines: a fixed-but-resizable worker pool and a time-based
// scheduler, coupled through a small future/promise layer.
//
// # Quick Start
//
// Initialize the global pool at application startup:
//
//	taskpool.InitGlobalPool(4) // 4 workers
//	defer taskpool.ShutdownGlobalPool()
//
// Submit work:
//
//	pool := taskpool.GetGlobalPool()
//	pool.SubmitFunc(func() {
//		// Your code here
//	})
//
// # Key Concepts
//
// Task: the unit of work. An engine calls exactly one of Execute or Abandon
// over a task's lifetime — Execute when the task runs, Abandon when the
// engine decides it never will (clear or shutdown).
//
// Pool: owns N worker goroutines pulling tasks FIFO from a ready queue.
// Supports live resize via SetNWorkers, which returns a future that resolves
// once the resize is effectively complete.
//
// Delayed submission: SubmitDelayed holds a task aside until a timer future
// fires, then moves it into the ready queue. The pool and the timer race at
// shutdown; whichever claims the task first wins, and the task is executed
// or abandoned exactly once either way.
//
// Scheduler: a single dedicated goroutine executing tasks at absolute
// deadlines, earliest first.
//
// # Observability
//
// Both engines accept a Config carrying a Logger, PanicHandler, Metrics and
// RejectedTaskHandler, and keep a bounded history of recent executions. The
// observability/prometheus package exports metrics and stats snapshots as
// Prometheus collectors.
//
// # Example
//
//	pool := taskpool.NewPool(4)
//	defer pool.Close()
//
//	done := taskpool.NewFutureTask(func() { fmt.Println("hello") })
//	pool.Submit(done)
//	done.Done().Wait()
package taskpool
