package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/bububa/content-agents/schema"
)

type greetInput struct {
	Name string `json:"name" jsonschema:"title=name,description=Person name"`
}

func TestFuncCall(t *testing.T) {
	var started, ended bool
	tool := NewFunc(func(_ context.Context, in *greetInput) (schema.String, error) {
		return schema.String("Hello, " + in.Name + "!"), nil
	},
		WithTitle("greet"),
		WithDescription("Greet someone"),
		WithStartHook(func(context.Context, Tool, any) { started = true }),
		WithEndHook(func(context.Context, Tool, any, any) { ended = true }),
	)
	if tool.Title() != "greet" {
		t.Errorf("expect title greet, got %s", tool.Title())
	}
	var params map[string]any
	if err := json.Unmarshal(tool.Parameters(), &params); err != nil {
		t.Fatalf("unmarshal schema: %v", err)
	}
	if params["type"] != "object" {
		t.Errorf("expect object schema, got %v", params["type"])
	}
	ret, err := tool.Call(context.Background(), json.RawMessage(`{"name":"Alice"}`))
	if err != nil {
		t.Fatal(err)
	}
	if ret != "Hello, Alice!" {
		t.Errorf("expect Hello, Alice!, got %s", ret)
	}
	if !started || !ended {
		t.Errorf("expect hooks called, start=%v end=%v", started, ended)
	}
}

func TestFuncCallErrors(t *testing.T) {
	failure := errors.New("boom")
	var hooked error
	tool := NewFunc(func(_ context.Context, in *greetInput) (schema.String, error) {
		return "", failure
	}, WithTitle("greet"), WithErrorHook(func(_ context.Context, _ Tool, _ any, err error) { hooked = err }))

	if _, err := tool.Call(context.Background(), json.RawMessage(`{"name":`)); !errors.Is(err, ErrTool) {
		t.Errorf("expect ErrTool for invalid arguments, got %v", err)
	}
	_, err := tool.Call(context.Background(), json.RawMessage(`{"name":"Bob"}`))
	if !errors.Is(err, failure) {
		t.Errorf("expect wrapped failure, got %v", err)
	}
	var toolErr *Error
	if !errors.As(err, &toolErr) || toolErr.Tool != "greet" {
		t.Errorf("expect *Error for greet, got %v", err)
	}
	if hooked != failure {
		t.Errorf("expect error hook with failure, got %v", hooked)
	}
}

type fetchInput struct {
	URL string `json:"url" validate:"required,url"`
}

func TestFuncCallValidatesArguments(t *testing.T) {
	var runs int
	tool := NewFunc(func(_ context.Context, in *fetchInput) (schema.String, error) {
		runs++
		return schema.String(in.URL), nil
	}, WithTitle("fetch"))

	for _, args := range []string{`{}`, `{"url":"not a url"}`} {
		_, err := tool.Call(context.Background(), json.RawMessage(args))
		if !errors.Is(err, ErrTool) {
			t.Errorf("expect ErrTool for %s, got %v", args, err)
		}
		if !errors.Is(err, schema.ErrInvalid) {
			t.Errorf("expect schema.ErrInvalid for %s, got %v", args, err)
		}
	}
	if runs != 0 {
		t.Errorf("expect no run for invalid arguments, got %d", runs)
	}
	ret, err := tool.Call(context.Background(), json.RawMessage(`{"url":"https://example.com/news"}`))
	if err != nil {
		t.Fatal(err)
	}
	if ret != "https://example.com/news" || runs != 1 {
		t.Errorf("expect one run with the url, got %s after %d runs", ret, runs)
	}
}
