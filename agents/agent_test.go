package agents

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/content-agents/components"
	"github.com/bububa/content-agents/llm"
	"github.com/bububa/content-agents/schema"
	"github.com/bububa/content-agents/tools"
)

// scriptedClient replies with the scripted responses in order and records every request
type scriptedClient struct {
	mu        sync.Mutex
	responses []openai.ChatCompletionResponse
	err       error
	requests  []openai.ChatCompletionRequest
}

func (c *scriptedClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	if c.err != nil {
		return openai.ChatCompletionResponse{}, c.err
	}
	if len(c.responses) == 0 {
		return openai.ChatCompletionResponse{}, errors.New("no scripted response")
	}
	resp := c.responses[0]
	c.responses = c.responses[1:]
	return resp, nil
}

func textResponse(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		ID:    "chatcmpl-text",
		Model: "gpt-4o",
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
		}},
		Usage: openai.Usage{PromptTokens: 10, CompletionTokens: 5},
	}
}

func toolCallResponse(calls ...openai.ToolCall) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		ID: "chatcmpl-tools",
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, ToolCalls: calls},
		}},
		Usage: openai.Usage{PromptTokens: 7, CompletionTokens: 3},
	}
}

func toolCall(id string, name string, args string) openai.ToolCall {
	return openai.ToolCall{ID: id, Type: openai.ToolTypeFunction, Function: openai.FunctionCall{Name: name, Arguments: args}}
}

type echoInput struct {
	Text string `json:"text"`
}

func echoTool() tools.Tool {
	return tools.NewFunc(func(_ context.Context, in *echoInput) (schema.String, error) {
		if in.Text == "" {
			return "", errors.New("empty text")
		}
		return schema.String("echo: " + in.Text), nil
	}, tools.WithTitle("echo"), tools.WithDescription("Echo the text"))
}

func TestRunWithoutTools(t *testing.T) {
	clt := &scriptedClient{responses: []openai.ChatCompletionResponse{textResponse("wear layers")}}
	agent, err := New(WithClient(clt), WithName("stylist"), WithModel("gpt-4o"), WithTemperature(0.2))
	if err != nil {
		t.Fatal(err)
	}
	resp := new(components.LLMResponse)
	got, err := agent.Run(context.Background(), schema.String("what to wear"), resp)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got != "wear layers" {
		t.Errorf("expect wear layers, got %s", got)
	}
	if len(clt.requests) != 1 {
		t.Fatalf("expect 1 request, got %d", len(clt.requests))
	}
	req := clt.requests[0]
	if len(req.Tools) != 0 || req.ToolChoice != nil {
		t.Errorf("expect no tools advertised, got %+v", req.Tools)
	}
	if req.Model != "gpt-4o" || req.Temperature != 0.2 {
		t.Errorf("unexpected request settings: %s %v", req.Model, req.Temperature)
	}
	if len(req.Messages) != 2 || req.Messages[0].Role != components.SystemRole || req.Messages[1].Content != "what to wear" {
		t.Errorf("unexpected messages: %+v", req.Messages)
	}
	if resp.Usage.Total() != 15 {
		t.Errorf("expect 15 tokens, got %d", resp.Usage.Total())
	}
	if n := agent.Memory().MessageCount(); n != 2 {
		t.Errorf("expect 2 messages in memory, got %d", n)
	}
}

func TestRunInvokesTools(t *testing.T) {
	clt := &scriptedClient{responses: []openai.ChatCompletionResponse{
		toolCallResponse(toolCall("call_1", "echo", `{"text":"hi"}`), toolCall("call_2", "missing", `{}`)),
		textResponse("done"),
	}}
	agent, err := New(WithClient(clt), WithTools(echoTool()))
	if err != nil {
		t.Fatal(err)
	}
	resp := new(components.LLMResponse)
	got, err := agent.Run(context.Background(), schema.String("say hi"), resp)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got != "done" {
		t.Errorf("expect done, got %s", got)
	}
	if len(clt.requests) != 2 {
		t.Fatalf("expect 2 requests, got %d", len(clt.requests))
	}
	first := clt.requests[0]
	if len(first.Tools) != 1 || first.Tools[0].Function.Name != "echo" || first.ToolChoice != "auto" {
		t.Errorf("unexpected tool advertisement: %+v %v", first.Tools, first.ToolChoice)
	}
	second := clt.requests[1].Messages
	if l := len(second); l != 5 {
		t.Fatalf("expect 5 messages in follow up, got %d", l)
	}
	if second[3].Role != components.ToolRole || second[3].ToolCallID != "call_1" || second[3].Content != "echo: hi" {
		t.Errorf("unexpected tool result: %+v", second[3])
	}
	if !strings.Contains(second[4].Content, "unknown tool") {
		t.Errorf("expect unknown tool reported back, got %+v", second[4])
	}
	if n := agent.Toolset().Calls("echo"); n != 1 {
		t.Errorf("expect echo called once, got %d", n)
	}
	if resp.Usage.Total() != 25 {
		t.Errorf("expect usage summed over round-trips, got %d", resp.Usage.Total())
	}
}

func TestRunFunctionChoiceNone(t *testing.T) {
	clt := &scriptedClient{responses: []openai.ChatCompletionResponse{textResponse("ok")}}
	agent, err := New(WithClient(clt), WithTools(echoTool()), WithFunctionChoice(NoneFunctionChoice))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := agent.Run(context.Background(), schema.String("x"), nil); err != nil {
		t.Fatal(err)
	}
	if len(clt.requests[0].Tools) != 0 {
		t.Error("expect no tools advertised with none function choice")
	}
}

func TestRunRequiredFunctionChoice(t *testing.T) {
	clt := &scriptedClient{responses: []openai.ChatCompletionResponse{
		toolCallResponse(toolCall("call_1", "echo", `{"text":"a"}`)),
		textResponse("ok"),
	}}
	agent, err := New(WithClient(clt), WithTools(echoTool()), WithFunctionChoice(RequiredFunctionChoice))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := agent.Run(context.Background(), schema.String("x"), nil); err != nil {
		t.Fatal(err)
	}
	if clt.requests[0].ToolChoice != "required" || clt.requests[1].ToolChoice != "auto" {
		t.Errorf("unexpected tool choices: %v %v", clt.requests[0].ToolChoice, clt.requests[1].ToolChoice)
	}
}

func TestRunErrors(t *testing.T) {
	ctx := context.Background()

	agent, _ := New()
	if _, err := agent.Run(ctx, schema.String("x"), nil); !errors.Is(err, ErrNoClient) {
		t.Errorf("expect ErrNoClient, got %v", err)
	}

	failing := &scriptedClient{err: errors.New("boom")}
	agent, _ = New(WithClient(failing))
	if _, err := agent.Run(ctx, schema.String("x"), nil); !errors.Is(err, ErrExecution) {
		t.Errorf("expect ErrExecution, got %v", err)
	}

	looping := &scriptedClient{}
	for range 3 {
		looping.responses = append(looping.responses, toolCallResponse(toolCall("c", "echo", `{"text":"a"}`)))
	}
	agent, _ = New(WithClient(looping), WithTools(echoTool()), WithInvocationConfig(InvocationConfig{MaxIterations: 3}))
	if _, err := agent.Run(ctx, schema.String("x"), nil); !errors.Is(err, ErrMaxIterations) {
		t.Errorf("expect ErrMaxIterations, got %v", err)
	}

	broken := &scriptedClient{responses: []openai.ChatCompletionResponse{
		toolCallResponse(toolCall("a", "echo", `{}`), toolCall("b", "echo", `{}`)),
	}}
	agent, _ = New(WithClient(broken), WithTools(echoTool()), WithInvocationConfig(InvocationConfig{MaxConsecutiveErrors: 2}))
	if _, err := agent.Run(ctx, schema.String("x"), nil); !errors.Is(err, ErrToolExecution) {
		t.Errorf("expect ErrToolExecution, got %v", err)
	}

	empty := &scriptedClient{responses: []openai.ChatCompletionResponse{{}}}
	agent, _ = New(WithClient(empty))
	if _, err := agent.Run(ctx, schema.String("x"), nil); !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("expect ErrEmptyResponse, got %v", err)
	}

	if _, err := New(WithTools(echoTool(), echoTool())); err == nil {
		t.Error("expect duplicate tool error")
	}
}

type post struct {
	Platform string `json:"platform" validate:"required"`
	Content  string `json:"content" validate:"required"`
}

// fakeStructured decodes a canned JSON answer into out
type fakeStructured struct {
	answer string
	req    *llm.StructuredRequest
}

func (f *fakeStructured) Structure(_ context.Context, req *llm.StructuredRequest, out any, resp *components.LLMResponse) error {
	f.req = req
	if resp != nil {
		resp.Usage = &components.LLMUsage{InputTokens: 3, OutputTokens: 4}
	}
	return json.Unmarshal([]byte(f.answer), out)
}

func TestRunStructured(t *testing.T) {
	clt := &fakeStructured{answer: `{"platform":"X","content":"Inflation cooled"}`}
	var ended bool
	agent, err := New(
		WithStructuredClient(clt),
		WithModel("gpt-4o"),
		WithEndHook(func(_ context.Context, _ *Agent, _ schema.Schema, out any, _ *components.LLMResponse) {
			ended = out.(*post).Platform == "X"
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	out := new(post)
	if err := agent.RunStructured(context.Background(), schema.String("write a post"), out, nil); err != nil {
		t.Fatalf("structured run failed: %v", err)
	}
	if !ended {
		t.Error("expect end hook called with output")
	}
	if clt.req.System == "" || len(clt.req.Messages) != 1 || clt.req.Model != "gpt-4o" {
		t.Errorf("unexpected structured request: %+v", clt.req)
	}
	history := agent.Memory().History()
	if len(history) != 2 || history[1].StringifiedContent() != `{"platform":"X","content":"Inflation cooled"}` {
		t.Errorf("unexpected memory: %+v", history)
	}
}

func TestRunStructuredValidation(t *testing.T) {
	var hookErr error
	agent, _ := New(
		WithStructuredClient(&fakeStructured{answer: `{"platform":"X"}`}),
		WithErrorHook(func(_ context.Context, _ *Agent, _ schema.Schema, err error) {
			hookErr = err
		}),
	)
	err := agent.RunStructured(context.Background(), schema.String("x"), new(post), nil)
	if !errors.Is(err, schema.ErrInvalid) || !errors.Is(err, ErrExecution) {
		t.Errorf("expect schema violation to fail the run, got %v", err)
	}
	if hookErr == nil {
		t.Error("expect error hook called")
	}
	agent, _ = New()
	if err := agent.RunStructured(context.Background(), schema.String("x"), new(post), nil); !errors.Is(err, ErrNoClient) {
		t.Errorf("expect ErrNoClient, got %v", err)
	}
}

func TestWith(t *testing.T) {
	clt := &scriptedClient{responses: []openai.ChatCompletionResponse{textResponse("a"), textResponse("b")}}
	base, _ := New(WithClient(clt), WithName("base"), WithModel("gpt-4o"))
	if _, err := base.Run(context.Background(), schema.String("x"), nil); err != nil {
		t.Fatal(err)
	}
	derived, err := base.With(WithName("derived"))
	if err != nil {
		t.Fatal(err)
	}
	if derived.Name() != "derived" || derived.Model() != "gpt-4o" {
		t.Errorf("unexpected derived agent: %s %s", derived.Name(), derived.Model())
	}
	if derived.Memory().MessageCount() != 0 {
		t.Error("expect derived agent to start with empty memory")
	}
	if base.Memory().MessageCount() != 2 {
		t.Error("expect base memory untouched")
	}
}
