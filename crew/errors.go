package crew

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCrew is the base error for crew configuration failures
	ErrInvalidCrew = errors.New("invalid crew")
	// Configuration errors
	ErrNoTasks          = fmt.Errorf("%w: no tasks", ErrInvalidCrew)
	ErrNilTask          = fmt.Errorf("%w: task cannot be nil", ErrInvalidCrew)
	ErrDuplicateTask    = fmt.Errorf("%w: duplicate task name", ErrInvalidCrew)
	ErrInvalidTaskName  = fmt.Errorf("%w: invalid task name", ErrInvalidCrew)
	ErrMissingAgent     = fmt.Errorf("%w: task without agent", ErrInvalidCrew)
	ErrUnknownAgent     = fmt.Errorf("%w: agent not in crew", ErrInvalidCrew)
	ErrUnknownTask      = fmt.Errorf("%w: context task not found", ErrInvalidCrew)
	ErrSelfReference    = fmt.Errorf("%w: task depends on itself", ErrInvalidCrew)
	ErrCyclicDependency = fmt.Errorf("%w: cyclic dependency detected", ErrInvalidCrew)
	ErrForwardReference = fmt.Errorf("%w: context task is scheduled later", ErrInvalidCrew)

	// ErrMissingInput is returned when a template references an input that was not provided
	ErrMissingInput = errors.New("missing input")
	// ErrTaskFailed wraps the failure of a task, aborting the kickoff
	ErrTaskFailed = errors.New("task failed")
)
