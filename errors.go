package optimizer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrPoolShutdown is delivered to jobs queued or submitted after the worker
// pool shut down.
var ErrPoolShutdown = errors.New("worker pool shut down")

// ErrInvalidResourceCapacity marks a resource whose daily capacity is zero,
// negative or missing. It is fatal to the single computation that found it,
// never to the pool.
type ErrInvalidResourceCapacity struct {
	ResourceID ResourceID
	Capacity   float64
}

func (e ErrInvalidResourceCapacity) Error() string {
	return fmt.Sprintf(
		"resource %d has invalid daily capacity %.2f",

		e.ResourceID,
		e.Capacity,
	)
}

// ErrCyclicDependency reports the task IDs of the cycle that aborted a
// distribution call.
type ErrCyclicDependency struct {
	Cycle []TaskID
}

func (e ErrCyclicDependency) Error() string {
	ids := make([]string, 0, len(e.Cycle))

	for _, id := range e.Cycle {
		ids = append(ids, fmt.Sprintf("%d", id))
	}

	return fmt.Sprintf(
		"dependency cycle detected: %s",
		strings.Join(ids, " -> "),
	)
}

// ErrDependencyViolation marks a proposed move or link that breaks
// finish-to-start ordering. Recoverable: callers adjust and retry or abandon.
type ErrDependencyViolation struct {
	TaskID         TaskID
	ConflictTaskID TaskID
	Boundary       Day
	Issue          string
}

func (e ErrDependencyViolation) Error() string {
	return e.Issue
}
