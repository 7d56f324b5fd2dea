package components

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/content-agents/schema"
)

func TestMemoryOverflow(t *testing.T) {
	mem := NewMemory(2)
	mem.NewTurn()
	mem.NewMessage(UserRole, schema.String("one"))
	mem.NewMessage(AssistantRole, schema.String("two"))
	mem.NewMessage(UserRole, schema.String("three"))
	if n := mem.MessageCount(); n != 2 {
		t.Fatalf("expect 2 messages, got %d", n)
	}
	history := mem.History()
	if got := history[0].StringifiedContent(); got != "two" {
		t.Errorf("expect oldest message dropped, got first=%s", got)
	}
}

func TestMemoryDeleteTurn(t *testing.T) {
	mem := NewMemory(0)
	first := mem.NewTurn()
	mem.NewMessage(UserRole, schema.String("hello"))
	second := mem.NewTurn()
	mem.NewMessage(UserRole, schema.String("again"))
	if err := mem.DeleteTurn(second); err != nil {
		t.Fatal(err)
	}
	if mem.TurnID() != first {
		t.Errorf("expect turnID %s, got %s", first, mem.TurnID())
	}
	if err := mem.DeleteTurn("missing"); err == nil {
		t.Error("expect error deleting unknown turn")
	}
	if err := mem.DeleteTurn(first); err != nil {
		t.Fatal(err)
	}
	if mem.MessageCount() != 0 || mem.TurnID() != "" {
		t.Errorf("expect empty memory, got %d messages turn=%q", mem.MessageCount(), mem.TurnID())
	}
}

func TestMessageToOpenAI(t *testing.T) {
	msg := NewToolCallsMessage("", []ToolCall{{ID: "call_1", Name: "WebSearch-search", Arguments: `{"query":"x"}`}})
	var dist openai.ChatCompletionMessage
	msg.ToOpenAI(&dist)
	if dist.Role != AssistantRole {
		t.Errorf("expect role %s, got %s", AssistantRole, dist.Role)
	}
	if len(dist.ToolCalls) != 1 || dist.ToolCalls[0].Function.Name != "WebSearch-search" {
		t.Errorf("unexpected tool calls %+v", dist.ToolCalls)
	}
	tool := NewToolMessage(ToolCallback{ID: "call_1", Content: "result"})
	var toolDist openai.ChatCompletionMessage
	tool.ToOpenAI(&toolDist)
	if toolDist.ToolCallID != "call_1" || toolDist.Content != "result" {
		t.Errorf("unexpected tool message %+v", toolDist)
	}
}

func TestMessageToGemini(t *testing.T) {
	var dist genai.Content
	NewMessage(AssistantRole, schema.String("draft")).ToGemini(&dist)
	if dist.Role != "model" {
		t.Errorf("expect role model, got %s", dist.Role)
	}
	if len(dist.Parts) != 1 || dist.Parts[0] != genai.Text("draft") {
		t.Errorf("unexpected parts %+v", dist.Parts)
	}
	var resp LLMResponse
	resp.FromGemini(&genai.GenerateContentResponse{UsageMetadata: &genai.UsageMetadata{PromptTokenCount: 12, CandidatesTokenCount: 30}})
	if resp.Usage.Total() != 42 {
		t.Errorf("expect 42 tokens, got %d", resp.Usage.Total())
	}
}
