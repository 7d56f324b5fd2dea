package agents

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is.
var (
	// ErrAgent is the base error for agent failures.
	ErrAgent = errors.New("agent error")
	// ErrExecution indicates a runtime failure during an agent run.
	ErrExecution = fmt.Errorf("%w: execution", ErrAgent)
	// ErrNoClient is returned when the agent has no client for the requested completion.
	ErrNoClient = fmt.Errorf("%w: no client", ErrAgent)
	// ErrMaxIterations is returned when the function calling loop does not converge.
	ErrMaxIterations = fmt.Errorf("%w: max iterations reached", ErrExecution)
	// ErrToolExecution indicates too many failing tool invocations.
	ErrToolExecution = errors.New("tool execution error")
	// ErrEmptyResponse is returned when the model returns no choices.
	ErrEmptyResponse = fmt.Errorf("%w: empty response", ErrExecution)
)
