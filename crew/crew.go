// Package crew runs a fixed set of agents over a dependency ordered list of tasks.
package crew

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/bububa/content-agents/agents"
	"github.com/bububa/content-agents/components"
	"github.com/bububa/content-agents/components/systemprompt"
	"github.com/bububa/content-agents/components/systemprompt/cot"
	"github.com/bububa/content-agents/components/systemprompt/crispe"
	"github.com/bububa/content-agents/schema"
)

// Output is the result of a kickoff: the output of the last task and every task output
type Output struct {
	// Raw is the raw output of the last task
	Raw string
	// Structured is the structured output of the last task, if any
	Structured any
	// Tasks are the task outputs in execution order
	Tasks []TaskOutput
	// Usage is the token usage of the whole run
	Usage components.LLMUsage
}

// Task returns the output of the named task
func (o *Output) Task(name string) (TaskOutput, bool) {
	for _, t := range o.Tasks {
		if t.Name == name {
			return t, true
		}
	}
	return TaskOutput{}, false
}

type Option func(*Crew)

// WithTaskCallback sets a function called after each completed task
func WithTaskCallback(fn func(context.Context, TaskOutput)) Option {
	return func(c *Crew) {
		c.taskCallback = fn
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Crew) {
		c.logger = l
	}
}

// Crew is an immutable, validated set of agents and tasks
type Crew struct {
	agents       []*Agent
	graph        *Graph
	taskCallback func(context.Context, TaskOutput)
	logger       *slog.Logger
}

// New validates the tasks against the crew agents and their context dependencies
func New(crewAgents []*Agent, tasks []*Task, opts ...Option) (*Crew, error) {
	graph, err := NewGraph(tasks)
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		if t.Agent == nil || t.Agent.Runner == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingAgent, t.Name)
		}
		if !slices.Contains(crewAgents, t.Agent) {
			return nil, fmt.Errorf("%w: %s (task %s)", ErrUnknownAgent, t.Agent.Name, t.Name)
		}
	}
	ret := &Crew{
		agents: crewAgents,
		graph:  graph,
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.logger == nil {
		ret.logger = slog.Default()
	}
	return ret, nil
}

// Graph returns the validated task graph
func (c *Crew) Graph() *Graph {
	return c.graph
}

// Agents returns the crew members
func (c *Crew) Agents() []*Agent {
	return append([]*Agent(nil), c.agents...)
}

type preparedTask struct {
	task           *Task
	description    string
	expectedOutput string
	role           string
	goal           string
	backstory      string
}

func prepare(task *Task, inputs map[string]string) (*preparedTask, error) {
	ret := &preparedTask{task: task}
	for _, v := range []struct {
		dist *string
		tpl  string
	}{
		{&ret.description, task.Description},
		{&ret.expectedOutput, task.ExpectedOutput},
		{&ret.role, task.Agent.Role},
		{&ret.goal, task.Agent.Goal},
		{&ret.backstory, task.Agent.Backstory},
	} {
		s, err := Interpolate(v.tpl, inputs)
		if err != nil {
			return nil, fmt.Errorf("task %s: %w", task.Name, err)
		}
		*v.dist = strings.TrimSpace(s)
	}
	return ret, nil
}

// Kickoff runs every task once, sequentially, in dependency order.
// The first failing task aborts the run and no partial output is returned.
func (c *Crew) Kickoff(ctx context.Context, inputs map[string]string) (*Output, error) {
	order := c.graph.Order()
	prepared := make([]*preparedTask, 0, len(order))
	for _, t := range order {
		p, err := prepare(t, inputs)
		if err != nil {
			return nil, err
		}
		prepared = append(prepared, p)
	}
	startTime := time.Now()
	outputs := make(map[string]TaskOutput, len(prepared))
	ret := &Output{Tasks: make([]TaskOutput, 0, len(prepared))}
	for _, p := range prepared {
		c.logger.InfoContext(ctx, "task started", "task", p.task.Name, "agent", p.task.Agent.Name, "context", c.graph.Upstream(p.task.Name))
		resp := new(components.LLMResponse)
		out, err := c.execute(ctx, p, outputs, resp)
		if err != nil {
			c.logger.ErrorContext(ctx, "task failed", "task", p.task.Name, "agent", p.task.Agent.Name, "error", err)
			return nil, fmt.Errorf("%w: %s: %w", ErrTaskFailed, p.task.Name, err)
		}
		ret.Usage.Merge(resp.Usage)
		outputs[out.Name] = *out
		ret.Tasks = append(ret.Tasks, *out)
		c.logger.InfoContext(ctx, "task completed", "task", p.task.Name, "agent", p.task.Agent.Name, "output_length", len(out.Raw))
		if fn := c.taskCallback; fn != nil {
			fn(ctx, *out)
		}
	}
	last := ret.Tasks[len(ret.Tasks)-1]
	ret.Raw = last.Raw
	ret.Structured = last.Structured
	c.logger.InfoContext(ctx, "crew completed", "tasks", len(ret.Tasks), "tokens", ret.Usage.Total(), "duration", time.Since(startTime))
	return ret, nil
}

func (c *Crew) execute(ctx context.Context, p *preparedTask, outputs map[string]TaskOutput, resp *components.LLMResponse) (*TaskOutput, error) {
	providers := make([]systemprompt.ContextProvider, 0, len(p.task.Context))
	for _, dep := range p.task.Context {
		upstream, found := outputs[dep.Name]
		if !found {
			return nil, fmt.Errorf("%w: output of %s is not available", ErrUnknownTask, dep.Name)
		}
		providers = append(providers, systemprompt.NewStaticProvider(dep.Name, upstream.Raw))
	}
	ret := &TaskOutput{
		Name:        p.task.Name,
		Agent:       p.task.Agent.Name,
		Description: p.description,
	}
	input := schema.String(p.description)
	if p.task.OutputSchema == nil {
		gen := crispe.New(
			crispe.WithCapacities(p.role),
			crispe.WithBackground(p.backstory),
			crispe.WithStatements("Your personal goal is: "+p.goal),
			crispe.WithPersonalities("Your final answer must be: "+p.expectedOutput),
			crispe.WithContextProviders(providers...),
		)
		runner, err := p.task.Agent.Runner.With(agents.WithSystemPromptGenerator(gen))
		if err != nil {
			return nil, err
		}
		raw, err := runner.Run(ctx, input, resp)
		if err != nil {
			return nil, err
		}
		ret.Raw = raw
		return ret, nil
	}
	out := p.task.OutputSchema()
	gen := cot.New(
		cot.WithBackground("You are "+p.role+".", p.backstory, "Your personal goal is: "+p.goal),
		cot.WithSteps("Read the task and the extra information and context.", "Produce the final answer for the task."),
		cot.WithOutputInstructs(
			"Your final answer must be: "+p.expectedOutput,
			"The answer must match this JSON schema: "+string(schema.JSONSchema(out)),
		),
		cot.WithContextProviders(providers...),
	)
	runner, err := p.task.Agent.Runner.With(agents.WithSystemPromptGenerator(gen))
	if err != nil {
		return nil, err
	}
	if err := runner.RunStructured(ctx, input, out, resp); err != nil {
		return nil, err
	}
	ret.Structured = out
	ret.Raw = schema.Stringify(schema.FromValue(out))
	return ret, nil
}
