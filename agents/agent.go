// Package agents implements chat agents with automatic function calling and structured output.
package agents

import (
	"context"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/content-agents/components"
	"github.com/bububa/content-agents/components/systemprompt"
	"github.com/bububa/content-agents/components/systemprompt/cot"
	"github.com/bububa/content-agents/llm"
	"github.com/bububa/content-agents/schema"
	"github.com/bububa/content-agents/tools"
)

// Config represents general agents configuration
type Config struct {
	// client Client for tool calling chat completions
	client llm.ChatCompleter
	// structured Client for structured output completions
	structured llm.StructuredClient
	//	memory  Memory component for storing chat history.
	memory *components.Memory
	//	systemPromptGenerator Component for generating system prompts.
	systemPromptGenerator systemprompt.Generator
	// model llm model or Azure deployment
	model string
	// temperature Temperature for response generation, typically ranging from 0 to 1.
	temperature float32
	// maxTokens Maximum number of tokens allowed in the response
	maxTokens int
	// name is Agent name presentation
	name       string
	tools      []tools.Tool
	invocation InvocationConfig
	logger     *slog.Logger
	startHook  func(context.Context, *Agent, schema.Schema)
	endHook    func(context.Context, *Agent, schema.Schema, any, *components.LLMResponse)
	errorHook  func(context.Context, *Agent, schema.Schema, error)
}

// Agent class for chat agents.
// It handles chat interactions, including managing memory, generating system prompts,
// calling tools requested by the model and obtaining responses from a language model.
type Agent struct {
	Config
	toolset *Toolset
}

// New initializes the Agent
func New(options ...Option) (*Agent, error) {
	ret := new(Agent)
	for _, opt := range options {
		opt(&ret.Config)
	}
	if ret.memory == nil {
		ret.memory = components.NewMemory(0)
	}
	if ret.systemPromptGenerator == nil {
		ret.systemPromptGenerator = cot.New()
	}
	if ret.logger == nil {
		ret.logger = slog.Default()
	}
	toolset, err := NewToolset(ret.tools...)
	if err != nil {
		return nil, err
	}
	ret.toolset = toolset
	return ret, nil
}

// With returns a copy of the agent with options applied on top of its configuration.
// The copy starts with an empty memory unless WithMemory is given.
func (a *Agent) With(options ...Option) (*Agent, error) {
	cfg := a.Config
	cfg.memory = nil
	opts := make([]Option, 0, len(options)+1)
	opts = append(opts, func(c *Config) { *c = cfg })
	opts = append(opts, options...)
	return New(opts...)
}

func (a *Agent) Name() string {
	return a.name
}

func (a *Agent) Model() string {
	return a.model
}

// Memory returns the agent chat history
func (a *Agent) Memory() *components.Memory {
	return a.memory
}

// ResetMemory clears the chat history
func (a *Agent) ResetMemory() {
	a.memory.Reset()
}

// Toolset returns the tools advertised by the agent
func (a *Agent) Toolset() *Toolset {
	return a.toolset
}

// SystemPrompt returns the system prompt
func (a *Agent) SystemPrompt() string {
	return a.systemPromptGenerator.Generate()
}

// RegisterSystemPromptContextProvider registers a new context provider
func (a *Agent) RegisterSystemPromptContextProvider(provider systemprompt.ContextProvider) {
	a.systemPromptGenerator.AddContextProviders(provider)
}

// UnregisterSystemPromptContextProvider Unregisters an existing context provider.
func (a *Agent) UnregisterSystemPromptContextProvider(title string) {
	a.systemPromptGenerator.RemoveContextProviders(title)
}

func (a *Agent) messages() []components.Message {
	history := a.memory.History()
	ret := make([]components.Message, 0, len(history)+1)
	if prompt := a.SystemPrompt(); prompt != "" {
		ret = append(ret, *components.NewMessage(components.SystemRole, schema.String(prompt)))
	}
	return append(ret, history...)
}

func (a *Agent) fail(ctx context.Context, input schema.Schema, err error) error {
	a.logger.ErrorContext(ctx, "agent run failed", "agent", a.name, "error", err)
	if fn := a.errorHook; fn != nil {
		fn(ctx, a, input, err)
	}
	return fmt.Errorf("agent %s: %w", a.name, err)
}

// Run runs the agent with the given user input and returns the final assistant text.
// Tools requested by the model are invoked automatically.
func (a *Agent) Run(ctx context.Context, input schema.Schema, resp *components.LLMResponse) (string, error) {
	if fn := a.startHook; fn != nil {
		fn(ctx, a, input)
	}
	if a.client == nil {
		return "", a.fail(ctx, input, ErrNoClient)
	}
	turnID := a.memory.NewTurn()
	a.memory.NewMessage(components.UserRole, input)
	req := openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: a.temperature,
		MaxTokens:   a.maxTokens,
	}
	for _, msg := range a.messages() {
		var v openai.ChatCompletionMessage
		msg.ToOpenAI(&v)
		req.Messages = append(req.Messages, v)
	}
	a.logger.InfoContext(ctx, "agent run", "agent", a.name, "turn", turnID, "tools", a.toolset.Len())
	inv, err := Invoke(ctx, a.client, req, a.toolset, a.invocation, a.logger.With("agent", a.name))
	if err != nil {
		return "", a.fail(ctx, input, err)
	}
	a.memory.AddMessages(inv.Messages...)
	if resp != nil {
		resp.FromOpenAI(&inv.Response)
		usage := inv.Usage
		resp.Usage = &usage
	}
	a.logger.InfoContext(ctx, "agent run completed", "agent", a.name, "turn", turnID, "iterations", inv.Iterations, "tokens", inv.Usage.Total())
	if fn := a.endHook; fn != nil {
		fn(ctx, a, input, inv.Content, resp)
	}
	return inv.Content, nil
}

// RunStructured runs the agent with the given user input and decodes the answer into out.
// out is validated after decoding, a violation fails the run.
func (a *Agent) RunStructured(ctx context.Context, input schema.Schema, out any, resp *components.LLMResponse) error {
	if fn := a.startHook; fn != nil {
		fn(ctx, a, input)
	}
	if a.structured == nil {
		return a.fail(ctx, input, ErrNoClient)
	}
	turnID := a.memory.NewTurn()
	a.memory.NewMessage(components.UserRole, input)
	req := &llm.StructuredRequest{
		Model:       a.model,
		Temperature: a.temperature,
		MaxTokens:   a.maxTokens,
		System:      a.SystemPrompt(),
		Messages:    a.memory.History(),
	}
	a.logger.InfoContext(ctx, "agent structured run", "agent", a.name, "turn", turnID, "schema", fmt.Sprintf("%T", out))
	if err := a.structured.Structure(ctx, req, out, resp); err != nil {
		return a.fail(ctx, input, fmt.Errorf("%w: %w", ErrExecution, err))
	}
	if err := schema.Validate(out); err != nil {
		return a.fail(ctx, input, fmt.Errorf("%w: %w", ErrExecution, err))
	}
	a.memory.NewMessage(components.AssistantRole, schema.FromValue(out))
	if fn := a.endHook; fn != nil {
		fn(ctx, a, input, out, resp)
	}
	return nil
}
