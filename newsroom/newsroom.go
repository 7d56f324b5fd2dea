// Package newsroom is the financial content crew: four agents monitor the news, analyze the
// market, write the content and review it into a ContentOutput.
package newsroom

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"strings"

	"github.com/bububa/content-agents/agents"
	"github.com/bububa/content-agents/components"
	"github.com/bububa/content-agents/config"
	"github.com/bububa/content-agents/connectors"
	"github.com/bububa/content-agents/crew"
	"github.com/bububa/content-agents/llm"
	"github.com/bububa/content-agents/schema"
	"github.com/bububa/content-agents/tools"
	"github.com/bububa/content-agents/tools/calculator"
	"github.com/bububa/content-agents/tools/sitesearch"
	"github.com/bububa/content-agents/tools/webscraper"
	"github.com/bububa/content-agents/tools/websearch"
)

// Task names, in execution order
const (
	MonitorTask  = "monitor_financial_news"
	AnalyzeTask  = "analyze_market_data"
	CreateTask   = "create_content"
	QualityTask  = "quality_assurance"
	SubjectInput = "subject"
)

// TaskOrder is the execution order of the crew
var TaskOrder = []string{MonitorTask, AnalyzeTask, CreateTask, QualityTask}

// ToolNames are the tool names agents.yaml may reference, NewDeps provides all of them
var ToolNames = []string{websearch.DefaultTitle, "scrape", "site_search", "calculate"}

// OutputSchemas maps the output_schema names usable in tasks.yaml to their types
var OutputSchemas = map[string]func() any{
	"content_output": func() any { return new(ContentOutput) },
}

var (
	// ErrEmptySubject is returned when Run is called with a blank subject
	ErrEmptySubject = errors.New("newsroom: empty subject")
	// ErrUnknownTool is returned when an agent definition names a tool that is not provided
	ErrUnknownTool = errors.New("newsroom: unknown tool")
	// ErrUnknownSchema is returned when a task definition names an unregistered output schema
	ErrUnknownSchema = errors.New("newsroom: unknown output schema")
	// ErrUnexpectedOutput is returned when the last task answers a structured output other than ContentOutput
	ErrUnexpectedOutput = errors.New("newsroom: unexpected crew output")
)

//go:embed config/*.yaml
var defaultConfigFS embed.FS

// DefaultConfig returns the embedded agent and task definitions
func DefaultConfig() (*config.Config, error) {
	sub, err := fs.Sub(defaultConfigFS, "config")
	if err != nil {
		return nil, err
	}
	return config.LoadFS(sub)
}

// Deps are the services the crew agents run on
type Deps struct {
	Client     llm.ChatCompleter
	Structured llm.StructuredClient
	// Model is the model or Azure deployment name
	Model string
	// Tools are the tools agents may reference by title in agents.yaml
	Tools  []tools.Tool
	Logger *slog.Logger
}

// NewDeps returns the deps of a connector set with the search, scrape, site search and calculate tools
func NewDeps(set *connectors.Set, logger *slog.Logger) Deps {
	scraper := webscraper.New(webscraper.WithHttpClient(set.HTTPClient))
	return Deps{
		Client:     set.Chat,
		Structured: set.Structured,
		Model:      set.Model,
		Tools: []tools.Tool{
			websearch.New(set.Search),
			scraper,
			sitesearch.New(set.Embed, sitesearch.WithScraper(scraper)),
			calculator.New(),
		},
		Logger: logger,
	}
}

// Check verifies that defs hold every task and agent of the crew and reference
// only known tools and output schemas
func Check(defs *config.Config) error {
	for _, name := range TaskOrder {
		taskDef, err := defs.Tasks.Lookup(name)
		if err != nil {
			return fmt.Errorf("%s: %w", config.TasksFile, err)
		}
		if taskDef.OutputSchema != "" {
			if _, found := OutputSchemas[taskDef.OutputSchema]; !found {
				return fmt.Errorf("%w: task %s: %s", ErrUnknownSchema, name, taskDef.OutputSchema)
			}
		}
		agentDef, err := defs.Agents.Lookup(taskDef.Agent)
		if err != nil {
			return fmt.Errorf("%s: task %s: %w", config.AgentsFile, name, err)
		}
		for _, toolName := range agentDef.Tools {
			if !slices.Contains(ToolNames, toolName) {
				return fmt.Errorf("%w: agent %s: %s", ErrUnknownTool, taskDef.Agent, toolName)
			}
		}
	}
	return nil
}

// Inputs returns the kickoff inputs for subject
func Inputs(subject string) map[string]string {
	return map[string]string{SubjectInput: subject}
}

// NewCrew builds the crew from the definitions in TaskOrder.
// Every task and agent definition the crew needs must be present.
func NewCrew(defs *config.Config, deps Deps, opts ...crew.Option) (*crew.Crew, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	toolsByName := make(map[string]tools.Tool, len(deps.Tools))
	for _, t := range deps.Tools {
		toolsByName[t.Title()] = t
	}
	var (
		members    []*crew.Agent
		membersMap = make(map[string]*crew.Agent)
		tasks      = make([]*crew.Task, 0, len(TaskOrder))
		tasksMap   = make(map[string]*crew.Task, len(TaskOrder))
	)
	for _, name := range TaskOrder {
		taskDef, err := defs.Tasks.Lookup(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", config.TasksFile, err)
		}
		member, found := membersMap[taskDef.Agent]
		if !found {
			agentDef, err := defs.Agents.Lookup(taskDef.Agent)
			if err != nil {
				return nil, fmt.Errorf("%s: task %s: %w", config.AgentsFile, name, err)
			}
			member, err = newAgent(taskDef.Agent, agentDef, deps, toolsByName)
			if err != nil {
				return nil, err
			}
			members = append(members, member)
			membersMap[taskDef.Agent] = member
		}
		task := &crew.Task{
			Name:           name,
			Description:    taskDef.Description,
			ExpectedOutput: taskDef.ExpectedOutput,
			Agent:          member,
		}
		for _, dep := range taskDef.Context {
			upstream, found := tasksMap[dep]
			if !found {
				return nil, fmt.Errorf("%w: task %s: context %s must run before it", crew.ErrForwardReference, name, dep)
			}
			task.Context = append(task.Context, upstream)
		}
		if taskDef.OutputSchema != "" {
			factory, found := OutputSchemas[taskDef.OutputSchema]
			if !found {
				return nil, fmt.Errorf("%w: task %s: %s", ErrUnknownSchema, name, taskDef.OutputSchema)
			}
			task.OutputSchema = factory
		}
		tasks = append(tasks, task)
		tasksMap[name] = task
	}
	opts = append([]crew.Option{crew.WithLogger(deps.Logger)}, opts...)
	return crew.New(members, tasks, opts...)
}

func newAgent(name string, def config.AgentConfig, deps Deps, toolsByName map[string]tools.Tool) (*crew.Agent, error) {
	agentTools := make([]tools.Tool, 0, len(def.Tools))
	for _, toolName := range def.Tools {
		t, found := toolsByName[toolName]
		if !found {
			return nil, fmt.Errorf("%w: agent %s: %s", ErrUnknownTool, name, toolName)
		}
		agentTools = append(agentTools, t)
	}
	logger := deps.Logger.With("agent", name)
	opts := []agents.Option{
		agents.WithName(name),
		agents.WithClient(deps.Client),
		agents.WithStructuredClient(deps.Structured),
		agents.WithModel(deps.Model),
		agents.WithMaxTokens(def.MaxTokens),
		agents.WithTools(agentTools...),
		agents.WithInvocationConfig(agents.InvocationConfig{
			MaxIterations:  def.MaxIterations,
			FunctionChoice: agents.AutoFunctionChoice,
		}),
		agents.WithLogger(logger),
	}
	if def.Temperature != nil {
		opts = append(opts, agents.WithTemperature(*def.Temperature))
	}
	if def.Verbose {
		opts = append(opts, agents.WithEndHook(func(ctx context.Context, _ *agents.Agent, _ schema.Schema, out any, _ *components.LLMResponse) {
			logger.InfoContext(ctx, "agent answer", "output", fmt.Sprint(out))
		}))
	}
	runner, err := agents.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", name, err)
	}
	return &crew.Agent{
		Name:      name,
		Role:      def.Role,
		Goal:      def.Goal,
		Backstory: def.Backstory,
		Runner:    runner,
	}, nil
}

// Newsroom runs the content crew for a subject
type Newsroom struct {
	crew   *crew.Crew
	logger *slog.Logger
}

// New builds a newsroom over the definitions
func New(defs *config.Config, deps Deps, opts ...crew.Option) (*Newsroom, error) {
	c, err := NewCrew(defs, deps, opts...)
	if err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Newsroom{crew: c, logger: logger}, nil
}

// Crew returns the underlying crew
func (n *Newsroom) Crew() *crew.Crew {
	return n.crew
}

// Result is the outcome of a run
type Result struct {
	// Content is the reviewed content, nil when the last task has no output schema
	Content *ContentOutput
	// Text is the raw answer of the last task
	Text string
	// Crew holds every task output and the token usage
	Crew *crew.Output
}

// Markdown returns the article of the content, or the raw answer when there is none
func (r *Result) Markdown() string {
	if r.Content != nil {
		return r.Content.Article
	}
	return r.Text
}

// Posts returns the social media posts of the content
func (r *Result) Posts() []SocialMediaPost {
	if r.Content == nil {
		return nil
	}
	return r.Content.SocialMediaPosts
}

// Run kicks off the crew with subject as the only input.
// The last task answers a ContentOutput when it has the content_output schema, raw text otherwise.
func (n *Newsroom) Run(ctx context.Context, subject string) (*Result, error) {
	if strings.TrimSpace(subject) == "" {
		return nil, ErrEmptySubject
	}
	n.logger.InfoContext(ctx, "newsroom run", "subject", subject)
	out, err := n.crew.Kickoff(ctx, Inputs(subject))
	if err != nil {
		return nil, err
	}
	ret := &Result{Text: out.Raw, Crew: out}
	if out.Structured == nil {
		return ret, nil
	}
	content, ok := out.Structured.(*ContentOutput)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnexpectedOutput, out.Structured)
	}
	ret.Content = content
	return ret, nil
}
