package kernel

import (
	"context"
	"errors"
	"sync"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/content-agents/agents"
	"github.com/bububa/content-agents/tools/websearch"
)

type scriptedClient struct {
	mu        sync.Mutex
	responses []openai.ChatCompletionResponse
	requests  []openai.ChatCompletionRequest
}

func (c *scriptedClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	if len(c.responses) == 0 {
		return openai.ChatCompletionResponse{}, errors.New("no scripted response")
	}
	resp := c.responses[0]
	c.responses = c.responses[1:]
	return resp, nil
}

func reply(msg openai.ChatCompletionMessage) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: msg}},
		Usage:   openai.Usage{PromptTokens: 4, CompletionTokens: 2},
	}
}

type staticConnector struct {
	queries []string
}

func (c *staticConnector) Search(_ context.Context, query string, count int, offset int) ([]websearch.Result, error) {
	c.queries = append(c.queries, query)
	return []websearch.Result{{Title: "Seattle spring weather", URL: "https://example.com/seattle", Snippet: "Mild and rainy"}}, nil
}

func TestInvokePromptSingleUserMessage(t *testing.T) {
	clt := &scriptedClient{responses: []openai.ChatCompletionResponse{
		reply(openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "Pack a rain jacket."}),
	}}
	k := New(clt, "gpt-4o")
	require.NoError(t, k.AddPlugin("WebSearch", websearch.New(&staticConnector{})))

	res, err := k.InvokePrompt(context.Background(), "Seattle spring menswear", NewArguments(ExecutionSettings{FunctionChoice: agents.AutoFunctionChoice}, nil))
	require.NoError(t, err)
	assert.Equal(t, "Pack a rain jacket.", res.Value)
	assert.Equal(t, "Pack a rain jacket.", res.String())
	assert.Equal(t, 1, res.Iterations)

	require.Len(t, clt.requests, 1)
	req := clt.requests[0]
	require.Len(t, req.Messages, 1)
	assert.Equal(t, openai.ChatMessageRoleUser, req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, "Seattle spring menswear")
	assert.Equal(t, "gpt-4o", req.Model)
	require.Len(t, req.Tools, 1)
	assert.Equal(t, "WebSearch-search", req.Tools[0].Function.Name)
	assert.Equal(t, "auto", req.ToolChoice)
}

func TestInvokePromptCallsPluginFunction(t *testing.T) {
	clt := &scriptedClient{responses: []openai.ChatCompletionResponse{
		reply(openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, ToolCalls: []openai.ToolCall{{
			ID:       "call_1",
			Type:     openai.ToolTypeFunction,
			Function: openai.FunctionCall{Name: "WebSearch-search", Arguments: `{"query":"Seattle spring weather"}`},
		}}}),
		reply(openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "Layers and a rain jacket."}),
	}}
	connector := &staticConnector{}
	k := New(clt, "gpt-4o")
	require.NoError(t, k.AddPlugin("WebSearch", websearch.New(connector)))

	res, err := k.InvokePrompt(context.Background(), "What to wear in {{$city}}?", NewArguments(ExecutionSettings{}, map[string]string{"city": "Seattle"}))
	require.NoError(t, err)
	assert.Equal(t, "Layers and a rain jacket.", res.Value)
	assert.Equal(t, []string{"Seattle spring weather"}, connector.queries)
	assert.Equal(t, int64(1), res.FunctionCalls["WebSearch-search"])
	assert.Equal(t, int64(12), res.Usage.Total())
	assert.Equal(t, "What to wear in Seattle?", clt.requests[0].Messages[0].Content)
	require.Len(t, clt.requests[1].Messages, 3)
	assert.Contains(t, clt.requests[1].Messages[2].Content, "https://example.com/seattle")
}

func TestInvokePromptSettings(t *testing.T) {
	clt := &scriptedClient{responses: []openai.ChatCompletionResponse{
		reply(openai.ChatCompletionMessage{Content: "ok"}),
	}}
	k := New(clt, "gpt-4o", WithTemperature(0.7), WithMaxTokens(100))
	require.NoError(t, k.AddPlugin("WebSearch", websearch.New(&staticConnector{})))
	temperature := float32(0.1)
	_, err := k.InvokePrompt(context.Background(), "x", NewArguments(ExecutionSettings{
		FunctionChoice: agents.NoneFunctionChoice,
		Temperature:    &temperature,
		MaxTokens:      50,
	}, nil))
	require.NoError(t, err)
	req := clt.requests[0]
	assert.Empty(t, req.Tools)
	assert.Equal(t, float32(0.1), req.Temperature)
	assert.Equal(t, 50, req.MaxTokens)
}

func TestAddPluginErrors(t *testing.T) {
	k := New(&scriptedClient{}, "gpt-4o")
	assert.ErrorIs(t, k.AddPlugin("Web Search", websearch.New(&staticConnector{})), ErrInvalidPlugin)
	assert.ErrorIs(t, k.AddPlugin("WebSearch"), ErrInvalidPlugin)
	require.NoError(t, k.AddPlugin("WebSearch", websearch.New(&staticConnector{})))
	assert.ErrorIs(t, k.AddPlugin("WebSearch", websearch.New(&staticConnector{})), ErrInvalidPlugin)
	assert.Len(t, k.Plugins(), 1)

	_, err := k.InvokePrompt(context.Background(), "", nil)
	assert.ErrorIs(t, err, ErrEmptyPrompt)
}

func TestRender(t *testing.T) {
	got, missing := Render("Hello {{$name}}, {{ $unknown }}!", map[string]string{"name": "Ada"})
	assert.Equal(t, "Hello Ada, {{ $unknown }}!", got)
	assert.Equal(t, []string{"unknown"}, missing)
}
