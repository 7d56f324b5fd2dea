package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/content-agents/components"
	"github.com/bububa/content-agents/llm"
	"github.com/bububa/content-agents/schema"
)

const (
	DefaultMaxIterations        = 10
	DefaultMaxConsecutiveErrors = 3
)

// InvocationConfig controls the function invocation loop behavior.
type InvocationConfig struct {
	// MaxIterations is the maximum number of LLM round-trips for tool calling.
	MaxIterations int
	// MaxConsecutiveErrors is the maximum number of consecutive tool errors before aborting.
	MaxConsecutiveErrors int
	// FunctionChoice controls whether tools are advertised
	FunctionChoice FunctionChoice
	// HideErrorDetails replaces tool error text sent back to the model with a generic message.
	HideErrorDetails bool
}

func (c InvocationConfig) withDefaults() InvocationConfig {
	if c.MaxIterations <= 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	if c.MaxConsecutiveErrors <= 0 {
		c.MaxConsecutiveErrors = DefaultMaxConsecutiveErrors
	}
	return c
}

// Invocation is the outcome of a function calling loop
type Invocation struct {
	// Content is the final assistant text
	Content string
	// Messages are the messages produced by the loop: assistant tool calls, tool results and the final answer
	Messages []components.Message
	// Response is the last chat completion response
	Response openai.ChatCompletionResponse
	// Usage is the token usage summed over every round-trip
	Usage components.LLMUsage
	// Iterations is the number of chat completion calls
	Iterations int
}

// Invoke runs the tool-calling loop: send req, run the requested tools, append their
// results and call the model again until it answers without tool calls.
func Invoke(ctx context.Context, client llm.ChatCompleter, req openai.ChatCompletionRequest, toolset *Toolset, config InvocationConfig, logger *slog.Logger) (*Invocation, error) {
	if client == nil {
		return nil, ErrNoClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	config = config.withDefaults()
	if config.FunctionChoice != NoneFunctionChoice && toolset.Len() > 0 {
		req.Tools = toolset.OpenAI()
		req.ToolChoice = config.FunctionChoice.String()
	} else {
		req.Tools = nil
		req.ToolChoice = nil
	}

	ret := new(Invocation)
	consecutiveErrors := 0
	for ret.Iterations < config.MaxIterations {
		resp, err := client.CreateChatCompletion(ctx, req)
		ret.Iterations++
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrExecution, err)
		}
		ret.Response = resp
		ret.Usage.Merge(&components.LLMUsage{
			InputTokens:  int64(resp.Usage.PromptTokens),
			OutputTokens: int64(resp.Usage.CompletionTokens),
		})
		if len(resp.Choices) == 0 {
			return nil, ErrEmptyResponse
		}
		reply := resp.Choices[0].Message
		calls := components.ToolCallsFromOpenAI(reply.ToolCalls)
		if len(calls) == 0 {
			ret.Content = reply.Content
			ret.Messages = append(ret.Messages, *components.NewMessage(components.AssistantRole, schema.String(reply.Content)))
			return ret, nil
		}

		assistant := components.NewToolCallsMessage(reply.Content, calls)
		ret.Messages = append(ret.Messages, *assistant)
		var openaiMsg openai.ChatCompletionMessage
		assistant.ToOpenAI(&openaiMsg)
		req.Messages = append(req.Messages, openaiMsg)

		for _, call := range calls {
			callback := components.ToolCallback{ID: call.ID, Name: call.Name}
			t, found := toolset.Get(call.Name)
			if !found {
				consecutiveErrors++
				logger.WarnContext(ctx, "unknown tool called", "tool", call.Name, "consecutive_errors", consecutiveErrors)
				callback.Content = fmt.Sprintf("error: unknown tool %q", call.Name)
				callback.IsError = true
			} else {
				toolset.tools[call.Name].calls.Inc()
				logger.DebugContext(ctx, "invoking tool", "tool", call.Name, "arguments", call.Arguments)
				result, invokeErr := t.Call(ctx, json.RawMessage(call.Arguments))
				if invokeErr != nil {
					consecutiveErrors++
					logger.WarnContext(ctx, "tool invocation error",
						"tool", call.Name,
						"error", invokeErr,
						"consecutive_errors", consecutiveErrors,
					)
					callback.IsError = true
					callback.Content = "error: " + invokeErr.Error()
					if config.HideErrorDetails {
						callback.Content = "error invoking tool"
					}
				} else {
					consecutiveErrors = 0
					callback.Content = result
				}
			}
			if consecutiveErrors >= config.MaxConsecutiveErrors {
				return nil, fmt.Errorf("%w: max consecutive errors reached (%d)", ErrToolExecution, consecutiveErrors)
			}
			toolMsg := components.NewToolMessage(callback)
			ret.Messages = append(ret.Messages, *toolMsg)
			var openaiToolMsg openai.ChatCompletionMessage
			toolMsg.ToOpenAI(&openaiToolMsg)
			req.Messages = append(req.Messages, openaiToolMsg)
		}
		if config.FunctionChoice == RequiredFunctionChoice {
			req.ToolChoice = AutoFunctionChoice.String()
		}
	}
	return nil, fmt.Errorf("%w (%d)", ErrMaxIterations, config.MaxIterations)
}
