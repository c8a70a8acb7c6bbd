package cli

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/forgeflow/internal/domain/workflow"
)

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: 1,
	}
}

// MapError converts known domain errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, workflow.ErrCyclicDependency) {
		return NewCLIError(
			err.Error(),
			"Break the dependency loop and retry; a workflow must stay a DAG",
			err,
		)
	}

	if errors.Is(err, workflow.ErrEmptyTitle) {
		return NewCLIError(
			err.Error(),
			"Pass a node title with --title",
			err,
		)
	}

	if errors.Is(err, workflow.ErrInvalidStatus) {
		return NewCLIError(
			err.Error(),
			"Valid statuses are PENDING, RUNNING, DONE and FAILED",
			err,
		)
	}

	return err
}
