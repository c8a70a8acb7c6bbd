package workflow

import "errors"

var (
	// ErrCyclicDependency indicates an incoming task set would introduce a
	// dependency cycle.
	ErrCyclicDependency = errors.New("cyclic dependency detected")

	// ErrInvalidStatus indicates a status outside the known set.
	ErrInvalidStatus = errors.New("invalid task status")

	// ErrEmptyTitle indicates a task injection without a title.
	ErrEmptyTitle = errors.New("task title is required")
)
