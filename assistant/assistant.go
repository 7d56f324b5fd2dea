// Package assistant answers a free text question with one kernel prompt, letting the model
// search the web when it needs to.
package assistant

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/bububa/content-agents/agents"
	"github.com/bububa/content-agents/kernel"
	"github.com/bububa/content-agents/llm"
	"github.com/bububa/content-agents/tools/websearch"
)

const (
	// DefaultSubject is the question suggested by the form
	DefaultSubject = "What is the recommendation for what to wear in Seattle in the spring for an adult male?"
	// SearchPlugin is the plugin name of the web search functions
	SearchPlugin = "WebSearch"
)

// ErrEmptySubject is returned when Ask is called with a blank subject
var ErrEmptySubject = errors.New("assistant: empty subject")

type Option func(*Assistant)

func WithLogger(l *slog.Logger) Option {
	return func(a *Assistant) {
		a.logger = l
	}
}

// WithKernelOptions passes options to the kernel
func WithKernelOptions(opts ...kernel.Option) Option {
	return func(a *Assistant) {
		a.kernelOptions = append(a.kernelOptions, opts...)
	}
}

// Assistant is a kernel with the web search plugin
type Assistant struct {
	kernel        *kernel.Kernel
	kernelOptions []kernel.Option
	logger        *slog.Logger
}

// New returns an assistant answering with client and model, searching through connector
func New(client llm.ChatCompleter, model string, connector websearch.Connector, opts ...Option) (*Assistant, error) {
	ret := new(Assistant)
	for _, opt := range opts {
		opt(ret)
	}
	if ret.logger == nil {
		ret.logger = slog.Default()
	}
	kernelOpts := append([]kernel.Option{kernel.WithLogger(ret.logger)}, ret.kernelOptions...)
	ret.kernel = kernel.New(client, model, kernelOpts...)
	if err := ret.kernel.AddPlugin(SearchPlugin, websearch.New(connector)); err != nil {
		return nil, err
	}
	return ret, nil
}

// Kernel returns the orchestration context of the assistant
func (a *Assistant) Kernel() *kernel.Kernel {
	return a.kernel
}

// Ask sends subject as the prompt with automatic function choice and returns the model answer
func (a *Assistant) Ask(ctx context.Context, subject string) (*kernel.FunctionResult, error) {
	if strings.TrimSpace(subject) == "" {
		return nil, ErrEmptySubject
	}
	args := kernel.NewArguments(kernel.ExecutionSettings{FunctionChoice: agents.AutoFunctionChoice}, nil)
	res, err := a.kernel.InvokePrompt(ctx, subject, args)
	if err != nil {
		return nil, err
	}
	a.logger.InfoContext(ctx, "assistant answered", "iterations", res.Iterations, "tokens", res.Usage.Total(), "function_calls", res.FunctionCalls)
	return res, nil
}
