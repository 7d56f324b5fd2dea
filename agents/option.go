package agents

import (
	"context"
	"log/slog"

	"github.com/bububa/content-agents/components"
	"github.com/bububa/content-agents/components/systemprompt"
	"github.com/bububa/content-agents/llm"
	"github.com/bububa/content-agents/schema"
	"github.com/bububa/content-agents/tools"
)

type Option func(a *Config)

// WithClient sets the chat client used by Run
func WithClient(clt llm.ChatCompleter) Option {
	return func(c *Config) {
		c.client = clt
	}
}

// WithStructuredClient sets the client used by RunStructured
func WithStructuredClient(clt llm.StructuredClient) Option {
	return func(c *Config) {
		c.structured = clt
	}
}

func WithSystemPromptGenerator(g systemprompt.Generator) Option {
	return func(c *Config) {
		c.systemPromptGenerator = g
	}
}

func WithMemory(m *components.Memory) Option {
	return func(c *Config) {
		c.memory = m
	}
}

func WithModel(model string) Option {
	return func(c *Config) {
		c.model = model
	}
}

func WithTemperature(temperature float32) Option {
	return func(c *Config) {
		c.temperature = temperature
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(c *Config) {
		c.maxTokens = maxTokens
	}
}

func WithName(name string) Option {
	return func(c *Config) {
		c.name = name
	}
}

// WithTools sets the tools the model may call
func WithTools(list ...tools.Tool) Option {
	return func(c *Config) {
		c.tools = list
	}
}

func WithFunctionChoice(choice FunctionChoice) Option {
	return func(c *Config) {
		c.invocation.FunctionChoice = choice
	}
}

// WithInvocationConfig sets the function calling loop config, including the function choice
func WithInvocationConfig(cfg InvocationConfig) Option {
	return func(c *Config) {
		c.invocation = cfg
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.logger = l
	}
}

func WithStartHook(fn func(context.Context, *Agent, schema.Schema)) Option {
	return func(c *Config) {
		c.startHook = fn
	}
}

func WithEndHook(fn func(context.Context, *Agent, schema.Schema, any, *components.LLMResponse)) Option {
	return func(c *Config) {
		c.endHook = fn
	}
}

func WithErrorHook(fn func(context.Context, *Agent, schema.Schema, error)) Option {
	return func(c *Config) {
		c.errorHook = fn
	}
}
