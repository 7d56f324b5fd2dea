package components

import (
	openai "github.com/sashabaranov/go-openai"
)

// ToolCall is a function call requested by the model
type ToolCall struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// ToolCallsFromOpenAI extracts function calls from an openai assistant message
func ToolCallsFromOpenAI(src []openai.ToolCall) []ToolCall {
	list := make([]ToolCall, 0, len(src))
	for _, v := range src {
		if v.Type != "" && v.Type != openai.ToolTypeFunction {
			continue
		}
		list = append(list, ToolCall{
			ID:        v.ID,
			Name:      v.Function.Name,
			Arguments: v.Function.Arguments,
		})
	}
	return list
}

// ToolCallsToOpenAI converts tool calls to openai ToolCall list
func ToolCallsToOpenAI(src []ToolCall) []openai.ToolCall {
	list := make([]openai.ToolCall, 0, len(src))
	for _, v := range src {
		list = append(list, openai.ToolCall{
			ID:   v.ID,
			Type: openai.ToolTypeFunction,
			Function: openai.FunctionCall{
				Name:      v.Name,
				Arguments: v.Arguments,
			},
		})
	}
	return list
}

// ToolCallback is the result of a tool call sent back to the model
type ToolCallback struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
	Content string `json:"content,omitempty"`
	IsError bool   `json:"is_error,omitempty"`
}
