package claude

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyPrompt indicates Run was called with an empty instruction
	ErrEmptyPrompt = errors.New("prompt cannot be empty")

	// ErrEmptyWorkDir indicates Run was called without a working directory
	ErrEmptyWorkDir = errors.New("working directory cannot be empty")
)

// ExecutionError reports a claude process that exited unsuccessfully
type ExecutionError struct {
	ExitCode int
	Err      error

	// Stderr is the tail of the process's standard error
	Stderr string
}

func (e *ExecutionError) Error() string {
	msg := fmt.Sprintf("claude execution failed (exit %d)", e.ExitCode)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += "\nstderr: " + s
	}
	return msg
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// NewExecutionError creates an ExecutionError
func NewExecutionError(exitCode int, err error, stderr string) *ExecutionError {
	return &ExecutionError{
		ExitCode: exitCode,
		Err:      err,
		Stderr:   stderr,
	}
}
