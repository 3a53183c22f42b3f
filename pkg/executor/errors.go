package executor

import (
	"errors"
	"fmt"
)

// ErrHookPanicked wraps the value recovered from a panicking hook or target factory.
var ErrHookPanicked = errors.New("hook panicked")

// ExecHookError reports an exec hook that failed; the plan is aborted.
type ExecHookError struct {
	Plan  string
	Step  int
	Event string
	Err   error
}

func (e *ExecHookError) Error() string {
	return fmt.Sprintf("step %d: exec %q failed: %v", e.Step+1, e.Event, e.Err)
}

func (e *ExecHookError) Unwrap() error { return e.Err }

// AssertionError reports a target that was not observably in the expected state.
// Step is -1 for the start node.
type AssertionError struct {
	Plan  string
	Step  int
	State string
	Err   error
}

func (e *AssertionError) Error() string {
	if e.Step < 0 {
		return fmt.Sprintf("start: assertion for state %q failed: %v", e.State, e.Err)
	}
	return fmt.Sprintf("step %d: assertion for state %q failed: %v", e.Step+1, e.State, e.Err)
}

func (e *AssertionError) Unwrap() error { return e.Err }
