package crew

import (
	"github.com/bububa/content-agents/agents"
)

// Agent is a crew member: a persona around an agent runner
type Agent struct {
	// Name is the symbolic name of the agent definition
	Name      string
	Role      string
	Goal      string
	Backstory string
	// Runner runs the completions of the agent
	Runner *agents.Agent
}

// Task is one unit of work assigned to exactly one agent
type Task struct {
	// Name is the symbolic name of the task definition
	Name string
	// Description is the task template, {key} placeholders are replaced by kickoff inputs
	Description string
	// ExpectedOutput describes the expected result, it is a template too
	ExpectedOutput string
	Agent          *Agent
	// Context are the upstream tasks whose outputs are handed to this task
	Context []*Task
	// OutputSchema returns a new pointer to decode the structured task output into.
	// nil makes a raw text task.
	OutputSchema func() any
}

// TaskOutput is the result of one task
type TaskOutput struct {
	Name  string `json:"name"`
	Agent string `json:"agent"`
	// Description is the interpolated task description
	Description string `json:"description"`
	// Raw is the text answer, the JSON encoding for structured tasks
	Raw string `json:"raw"`
	// Structured is the decoded output of structured tasks
	Structured any `json:"structured,omitempty"`
}

func (o TaskOutput) String() string {
	return o.Raw
}
