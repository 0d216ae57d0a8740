package core

import "errors"

// ErrTaskPanicked is the settlement error of a FutureTask whose body panicked.
var ErrTaskPanicked = errors.New("taskpool: task panicked")

// Task is the unit of work accepted by both engines. An engine invokes
// exactly one of Execute or Abandon over the task's lifetime: Execute when it
// decides to run the work, Abandon when it decides the work will never run
// (clear or shutdown). After either call the engine drops its reference.
type Task interface {
	Execute()
	Abandon()
}

// TaskFunc adapts a bare function to a Task with a no-op Abandon.
type TaskFunc func()

// Execute runs the function.
func (f TaskFunc) Execute() { f() }

// Abandon is a no-op; use NewTask when cancellation must be observed.
func (f TaskFunc) Abandon() {}

// funcTask pairs an execute body with an abandon callback.
type funcTask struct {
	execute func()
	abandon func()
}

// NewTask builds a Task from separate execute and abandon callbacks.
// Either may be nil.
func NewTask(execute, abandon func()) Task {
	return &funcTask{execute: execute, abandon: abandon}
}

func (t *funcTask) Execute() {
	if t.execute != nil {
		t.execute()
	}
}

func (t *funcTask) Abandon() {
	if t.abandon != nil {
		t.abandon()
	}
}

// =============================================================================
// NamedTask: attach a name for history and diagnostics
// =============================================================================

// NamedTask wraps a Task with a name that shows up in execution history
// records and panic reports.
type NamedTask struct {
	Name string
	Task Task
}

// Named wraps t with a name.
func Named(name string, t Task) *NamedTask {
	return &NamedTask{Name: name, Task: t}
}

// NamedFunc wraps a bare function with a name.
func NamedFunc(name string, fn func()) *NamedTask {
	return &NamedTask{Name: name, Task: TaskFunc(fn)}
}

// Execute runs the wrapped task.
func (t *NamedTask) Execute() { t.Task.Execute() }

// Abandon abandons the wrapped task.
func (t *NamedTask) Abandon() { t.Task.Abandon() }

// taskName extracts the display name of a task, empty for anonymous tasks.
func taskName(t Task) string {
	if nt, ok := t.(*NamedTask); ok {
		return nt.Name
	}
	return ""
}

// =============================================================================
// FutureTask: a task whose completion is observable
// =============================================================================

// FutureTask couples a task body with a future: Execute resolves it, Abandon
// cancels it, a panic in the body fails it. This is the supported way for a
// caller to find out whether an already-submitted task ran or was cancelled.
type FutureTask struct {
	fn      func()
	promise *Promise
}

// NewFutureTask builds a FutureTask around fn.
func NewFutureTask(fn func()) *FutureTask {
	return &FutureTask{fn: fn, promise: NewPromise()}
}

// Done returns the completion future.
func (t *FutureTask) Done() *Future {
	return t.promise.Future()
}

// Execute runs the body and resolves the future. If the body panics the
// future fails and the panic propagates to the engine's recovery handler.
func (t *FutureTask) Execute() {
	ok := false
	defer func() {
		if ok {
			t.promise.Resolve()
		} else {
			t.promise.Fail(ErrTaskPanicked)
		}
	}()
	if t.fn != nil {
		t.fn()
	}
	ok = true
}

// Abandon cancels the future.
func (t *FutureTask) Abandon() {
	t.promise.Cancel()
}
