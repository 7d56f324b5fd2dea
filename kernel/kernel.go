// Package kernel is a minimal orchestration context: one chat service, named plugins of
// functions and prompt invocation with automatic function calling.
package kernel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/content-agents/agents"
	"github.com/bububa/content-agents/components"
	"github.com/bububa/content-agents/llm"
	"github.com/bububa/content-agents/tools"
)

var (
	ErrKernel        = errors.New("kernel error")
	ErrInvalidPlugin = fmt.Errorf("%w: invalid plugin", ErrKernel)
	ErrEmptyPrompt   = fmt.Errorf("%w: empty prompt", ErrKernel)

	pluginNameRegex = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

// FunctionNameSeparator joins plugin and function names
const FunctionNameSeparator = "-"

// Plugin is a named group of functions
type Plugin struct {
	Name      string
	Functions []tools.Tool
}

// FunctionResult is the result of a prompt invocation
type FunctionResult struct {
	// Value is the final model answer
	Value string
	// Usage is the token usage over every round-trip
	Usage components.LLMUsage
	// Iterations is the number of chat completion calls
	Iterations int
	// FunctionCalls counts function invocations by fully qualified name
	FunctionCalls map[string]int64
}

func (r FunctionResult) String() string {
	return r.Value
}

type Option func(*Kernel)

func WithLogger(l *slog.Logger) Option {
	return func(k *Kernel) {
		k.logger = l
	}
}

func WithTemperature(temperature float32) Option {
	return func(k *Kernel) {
		k.temperature = temperature
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(k *Kernel) {
		k.maxTokens = maxTokens
	}
}

// WithInvocationConfig sets the function calling loop limits
func WithInvocationConfig(cfg agents.InvocationConfig) Option {
	return func(k *Kernel) {
		k.invocation = cfg
	}
}

// Kernel holds one chat completion service and the registered plugins.
// Plugins are registered during setup, a Kernel is not safe for concurrent AddPlugin.
type Kernel struct {
	client      llm.ChatCompleter
	model       string
	temperature float32
	maxTokens   int
	invocation  agents.InvocationConfig
	logger      *slog.Logger
	plugins     []Plugin
}

// New returns a kernel using client with the model or Azure deployment name
func New(client llm.ChatCompleter, model string, opts ...Option) *Kernel {
	ret := &Kernel{
		client: client,
		model:  model,
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.logger == nil {
		ret.logger = slog.Default()
	}
	return ret
}

// AddPlugin registers functions under the plugin name
func (k *Kernel) AddPlugin(name string, functions ...tools.Tool) error {
	if !pluginNameRegex.MatchString(name) {
		return fmt.Errorf("%w: name %q", ErrInvalidPlugin, name)
	}
	if len(functions) == 0 {
		return fmt.Errorf("%w: %s has no functions", ErrInvalidPlugin, name)
	}
	for _, p := range k.plugins {
		if p.Name == name {
			return fmt.Errorf("%w: duplicate plugin %s", ErrInvalidPlugin, name)
		}
	}
	k.plugins = append(k.plugins, Plugin{Name: name, Functions: functions})
	return nil
}

// Plugins returns the registered plugins
func (k *Kernel) Plugins() []Plugin {
	return append([]Plugin(nil), k.plugins...)
}

// FunctionName returns the name a plugin function is exposed to the model with
func FunctionName(plugin string, function string) string {
	return plugin + FunctionNameSeparator + function
}

func (k *Kernel) toolset() (*agents.Toolset, error) {
	set, err := agents.NewToolset()
	if err != nil {
		return nil, err
	}
	for _, p := range k.plugins {
		for _, fn := range p.Functions {
			if err := set.Add(FunctionName(p.Name, fn.Title()), fn); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidPlugin, err)
			}
		}
	}
	return set, nil
}

// InvokePrompt renders prompt with args and sends it as the single user message of a
// chat completion. Function calls requested by the model are resolved automatically.
func (k *Kernel) InvokePrompt(ctx context.Context, prompt string, args *Arguments) (*FunctionResult, error) {
	if args == nil {
		args = new(Arguments)
	}
	rendered, missing := Render(prompt, args.Values)
	if len(missing) > 0 {
		k.logger.WarnContext(ctx, "prompt variables without value", "variables", missing)
	}
	if rendered == "" {
		return nil, ErrEmptyPrompt
	}
	set, err := k.toolset()
	if err != nil {
		return nil, err
	}
	req := openai.ChatCompletionRequest{
		Model:       k.model,
		Temperature: k.temperature,
		MaxTokens:   k.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: rendered},
		},
	}
	if t := args.Settings.Temperature; t != nil {
		req.Temperature = *t
	}
	if args.Settings.MaxTokens > 0 {
		req.MaxTokens = args.Settings.MaxTokens
	}
	invocation := k.invocation
	invocation.FunctionChoice = args.Settings.FunctionChoice
	k.logger.InfoContext(ctx, "invoking prompt", "model", k.model, "functions", set.Names(), "function_choice", invocation.FunctionChoice.String())
	inv, err := agents.Invoke(ctx, k.client, req, set, invocation, k.logger)
	if err != nil {
		return nil, fmt.Errorf("invoke prompt: %w", err)
	}
	return &FunctionResult{
		Value:         inv.Content,
		Usage:         inv.Usage,
		Iterations:    inv.Iterations,
		FunctionCalls: set.Stats(),
	}, nil
}
