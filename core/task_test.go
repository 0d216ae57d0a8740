package core

import (
	"errors"
	"testing"
)

// TestTaskFunc_Adapters verifies the bare-function adapter
// Given: a TaskFunc
// When: Execute and Abandon are called
// Then: Execute runs the function, Abandon is a no-op
func TestTaskFunc_Adapters(t *testing.T) {
	ran := false
	task := TaskFunc(func() { ran = true })

	task.Abandon()
	if ran {
		t.Error("Abandon() ran the function")
	}

	task.Execute()
	if !ran {
		t.Error("Execute() did not run the function")
	}
}

// TestNewTask_AbandonCallback verifies the two-callback adapter
// Given: a task built with NewTask
// When: Abandon is called
// Then: the abandon callback runs, not the execute callback
func TestNewTask_AbandonCallback(t *testing.T) {
	executed, abandoned := false, false
	task := NewTask(func() { executed = true }, func() { abandoned = true })

	task.Abandon()

	if executed {
		t.Error("Abandon() ran the execute callback")
	}
	if !abandoned {
		t.Error("Abandon() did not run the abandon callback")
	}
}

// TestNewTask_NilCallbacks verifies nil tolerance
// Given: a task built with nil callbacks
// When: Execute and Abandon are called
// Then: neither panics
func TestNewTask_NilCallbacks(t *testing.T) {
	task := NewTask(nil, nil)
	task.Execute()
	task.Abandon()
}

// TestNamedTask verifies name extraction
// Given: a named and an anonymous task
// When: taskName inspects them
// Then: the name round-trips, anonymous yields empty
func TestNamedTask(t *testing.T) {
	named := NamedFunc("compaction", func() {})
	if got := taskName(named); got != "compaction" {
		t.Errorf("taskName(named) = %q, want %q", got, "compaction")
	}
	if got := taskName(TaskFunc(func() {})); got != "" {
		t.Errorf("taskName(anonymous) = %q, want empty", got)
	}
}

// TestFutureTask_Execute verifies the success path
// Given: a FutureTask
// When: Execute is called
// Then: the body runs and the future resolves
func TestFutureTask_Execute(t *testing.T) {
	ran := false
	task := NewFutureTask(func() { ran = true })

	task.Execute()

	if !ran {
		t.Error("body did not run")
	}
	if task.Done().State() != FutureResolved {
		t.Errorf("Done().State() = %v, want FutureResolved", task.Done().State())
	}
}

// TestFutureTask_Abandon verifies the cancellation path
// Given: a FutureTask
// When: Abandon is called
// Then: the future is cancelled and the body never ran
func TestFutureTask_Abandon(t *testing.T) {
	ran := false
	task := NewFutureTask(func() { ran = true })

	task.Abandon()

	if ran {
		t.Error("body ran on Abandon")
	}
	if !task.Done().Cancelled() {
		t.Errorf("Done().State() = %v, want FutureCancelled", task.Done().State())
	}
}

// TestFutureTask_PanicFailsFuture verifies the panic path
// Given: a FutureTask whose body panics
// When: Execute is called (with the engine-style recover around it)
// Then: the future fails with ErrTaskPanicked and the panic propagates
func TestFutureTask_PanicFailsFuture(t *testing.T) {
	task := NewFutureTask(func() { panic("boom") })

	recovered := func() (r any) {
		defer func() { r = recover() }()
		task.Execute()
		return nil
	}()

	if recovered == nil {
		t.Error("panic did not propagate out of Execute")
	}
	if !errors.Is(task.Done().Err(), ErrTaskPanicked) {
		t.Errorf("Done().Err() = %v, want ErrTaskPanicked", task.Done().Err())
	}
}
