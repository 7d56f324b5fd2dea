package components

import (
	cohere "github.com/cohere-ai/cohere-go/v2"
	"github.com/google/generative-ai-go/genai"
	anthropic "github.com/liushuangls/go-anthropic/v2"
	"github.com/rs/xid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/content-agents/schema"
)

// NewTurnID returns a new turn ID.
func NewTurnID() string {
	return xid.New().String()
}

// MessageRole is the role of the message sender (e.g., 'user', 'system', 'tool')
type MessageRole = string

const (
	SystemRole    MessageRole = "system"
	UserRole      MessageRole = "user"
	AssistantRole MessageRole = "assistant"
	ToolRole      MessageRole = "tool"
)

// Message  Represents a message in the chat history.
type Message struct {
	content schema.Schema
	// role is the role of the message sender (e.g., 'user', 'system', 'tool')
	role MessageRole
	//	turnID is Unique identifier for the turn this message belongs to.
	turnID string
	// toolCalls are the function calls requested by an assistant message
	toolCalls []ToolCall
	// toolCallID links a tool message to the call it answers
	toolCallID string
}

// NewMessage returns a new Message
func NewMessage(role MessageRole, content schema.Schema) *Message {
	return &Message{
		role:    role,
		content: content,
	}
}

// NewToolCallsMessage returns an assistant message carrying tool calls
func NewToolCallsMessage(content string, calls []ToolCall) *Message {
	return &Message{
		role:      AssistantRole,
		content:   schema.String(content),
		toolCalls: calls,
	}
}

// NewToolMessage returns a tool result message
func NewToolMessage(callback ToolCallback) *Message {
	return &Message{
		role:       ToolRole,
		content:    schema.String(callback.Content),
		toolCallID: callback.ID,
	}
}

// SetTurnID set message turnID
func (m *Message) SetTurnID(turnID string) *Message {
	m.turnID = turnID
	return m
}

// Role returns message role
func (m Message) Role() MessageRole {
	return m.role
}

// Content returns message content
func (m Message) Content() schema.Schema {
	return m.content
}

// StringifiedContent returns message content as text
func (m Message) StringifiedContent() string {
	return schema.Stringify(m.content)
}

// TurnID returns message turnID
func (m Message) TurnID() string {
	return m.turnID
}

// ToolCalls returns the tool calls of an assistant message
func (m Message) ToolCalls() []ToolCall {
	return m.toolCalls
}

// ToOpenAI convert message to openai ChatCompletionMessage
func (m Message) ToOpenAI(dist *openai.ChatCompletionMessage) {
	dist.Role = m.role
	dist.Content = m.StringifiedContent()
	if len(m.toolCalls) > 0 {
		dist.ToolCalls = ToolCallsToOpenAI(m.toolCalls)
	}
	if m.toolCallID != "" {
		dist.ToolCallID = m.toolCallID
	}
}

// ToAnthropic convert message to anthropic Message
func (m Message) ToAnthropic(dist *anthropic.Message) {
	switch m.role {
	case AssistantRole:
		dist.Role = anthropic.RoleAssistant
	default:
		dist.Role = anthropic.RoleUser
	}
	dist.Content = []anthropic.MessageContent{anthropic.NewTextMessageContent(m.StringifiedContent())}
}

// ToCohere convert message to cohere Message
func (m Message) ToCohere(dist *cohere.Message) {
	msg := &cohere.ChatMessage{
		Message: m.StringifiedContent(),
	}
	switch m.role {
	case SystemRole:
		dist.Role = "SYSTEM"
		dist.System = msg
	case AssistantRole:
		dist.Role = "CHATBOT"
		dist.Chatbot = msg
	default:
		dist.Role = "USER"
		dist.User = msg
	}
}

// ToGemini convert message to gemini Content, system messages are sent as user turns
func (m Message) ToGemini(dist *genai.Content) {
	switch m.role {
	case AssistantRole:
		dist.Role = "model"
	default:
		dist.Role = "user"
	}
	dist.Parts = []genai.Part{genai.Text(m.StringifiedContent())}
}
