package llm

import (
	"context"
	"fmt"

	"github.com/bububa/instructor-go"
	"github.com/bububa/instructor-go/instructors"
	instructorGemini "github.com/bububa/instructor-go/instructors/gemini"
	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereClient "github.com/cohere-ai/cohere-go/v2/client"
	cohereOption "github.com/cohere-ai/cohere-go/v2/option"
	"github.com/google/generative-ai-go/genai"
	anthropic "github.com/liushuangls/go-anthropic/v2"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"

	"github.com/bububa/content-agents/components"
)

// DefaultAnthropicMaxTokens is sent to Anthropic when a request has no token budget,
// the messages api rejects a zero max_tokens
const DefaultAnthropicMaxTokens = 4096

// StructuredRequest is one structured completion request
type StructuredRequest struct {
	Model       string
	Temperature float32
	// MaxTokens is the completion budget, 0 leaves it to the provider
	MaxTokens int
	// System is the system prompt
	System string
	// Messages is the conversation, the last message is the user request
	Messages []components.Message
}

// StructuredClient fills out with a response decoded into its type
type StructuredClient interface {
	Structure(ctx context.Context, req *StructuredRequest, out any, resp *components.LLMResponse) error
}

// StructuredOption configures NewStructuredClient
type StructuredOption func(c *InstructorClient)

// WithChatClient reuses an OpenAI or Azure OpenAI client instead of building a new one
func WithChatClient(clt *openai.Client) StructuredOption {
	return func(c *InstructorClient) {
		c.openai = clt
	}
}

// InstructorClient runs structured completions through instructor-go.
// An instructor keeps the encoder of the first response type it decodes, so one is made per call.
type InstructorClient struct {
	provider  Provider
	openai    *openai.Client
	anthropic *anthropic.Client
	cohere    *cohereClient.Client
	gemini    *genai.Client
}

var _ StructuredClient = (*InstructorClient)(nil)

// NewStructuredClient returns the structured output client of cfg.Provider
func NewStructuredClient(ctx context.Context, cfg Config, opts ...StructuredOption) (*InstructorClient, error) {
	cfg = cfg.WithDefaults()
	c := &InstructorClient{provider: cfg.Provider}
	for _, opt := range opts {
		opt(c)
	}
	switch cfg.Provider {
	case Azure, OpenAI:
		if c.openai != nil {
			return c, nil
		}
		clt, err := NewChatClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		c.openai = clt
	case Anthropic:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: anthropic api key is required", ErrCredentials)
		}
		clientOpts := make([]anthropic.ClientOption, 0, 1)
		if cfg.Endpoint != "" {
			clientOpts = append(clientOpts, anthropic.WithBaseURL(cfg.Endpoint))
		}
		c.anthropic = anthropic.NewClient(cfg.APIKey, clientOpts...)
	case Cohere:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: cohere api key is required", ErrCredentials)
		}
		reqOpts := []cohereOption.RequestOption{cohereOption.WithToken(cfg.APIKey)}
		if cfg.Endpoint != "" {
			reqOpts = append(reqOpts, cohereOption.WithBaseURL(cfg.Endpoint))
		}
		c.cohere = cohereClient.NewClient(reqOpts...)
	case Gemini:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: gemini api key is required", ErrCredentials)
		}
		clientOpts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
		if cfg.Endpoint != "" {
			clientOpts = append(clientOpts, option.WithEndpoint(cfg.Endpoint))
		}
		clt, err := genai.NewClient(ctx, clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("gemini client: %w", err)
		}
		c.gemini = clt
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, cfg.Provider)
	}
	return c, nil
}

// Provider returns the provider served by c
func (c *InstructorClient) Provider() Provider {
	return c.provider
}

// Close releases the gemini connection, other providers hold none
func (c *InstructorClient) Close() error {
	if c.gemini != nil {
		return c.gemini.Close()
	}
	return nil
}

// instructorOptions asks for JSON answers with a single attempt, the caller validates and fails the run
func instructorOptions(provider instructor.Provider) []instructor.Option {
	return []instructor.Option{
		instructor.WithProvider(provider),
		instructor.WithMode(instructor.ModeJSON),
		instructor.WithMaxRetries(0),
	}
}

// Structure implements StructuredClient
func (c *InstructorClient) Structure(ctx context.Context, req *StructuredRequest, out any, resp *components.LLMResponse) error {
	switch c.provider {
	case Azure, OpenAI:
		return c.structureOpenAI(ctx, req, out, resp)
	case Anthropic:
		return c.structureAnthropic(ctx, req, out, resp)
	case Cohere:
		return c.structureCohere(ctx, req, out, resp)
	case Gemini:
		return c.structureGemini(ctx, req, out, resp)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedProvider, c.provider)
	}
}

func (c *InstructorClient) structureOpenAI(ctx context.Context, req *StructuredRequest, out any, resp *components.LLMResponse) error {
	chatReq := openai.ChatCompletionRequest{
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.System != "" {
		chatReq.Messages = append(chatReq.Messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	for _, msg := range req.Messages {
		v := new(openai.ChatCompletionMessage)
		msg.ToOpenAI(v)
		chatReq.Messages = append(chatReq.Messages, *v)
	}
	var res openai.ChatCompletionResponse
	if err := instructors.FromOpenAI(c.openai, instructorOptions(instructor.ProviderOpenAI)...).Chat(ctx, &chatReq, out, &res); err != nil {
		return err
	}
	if resp != nil {
		resp.FromOpenAI(&res)
	}
	return nil
}

func (c *InstructorClient) structureAnthropic(ctx context.Context, req *StructuredRequest, out any, resp *components.LLMResponse) error {
	temperature := req.Temperature
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultAnthropicMaxTokens
	}
	chatReq := anthropic.MessagesRequest{
		Model:       anthropic.Model(req.Model),
		System:      req.System,
		Temperature: &temperature,
		MaxTokens:   maxTokens,
	}
	for _, msg := range req.Messages {
		v := new(anthropic.Message)
		msg.ToAnthropic(v)
		chatReq.Messages = append(chatReq.Messages, *v)
	}
	var res anthropic.MessagesResponse
	if err := instructors.FromAnthropic(c.anthropic, instructorOptions(instructor.ProviderAnthropic)...).Chat(ctx, &chatReq, out, &res); err != nil {
		return err
	}
	if resp != nil {
		resp.FromAnthropic(&res)
	}
	return nil
}

func (c *InstructorClient) structureCohere(ctx context.Context, req *StructuredRequest, out any, resp *components.LLMResponse) error {
	if len(req.Messages) == 0 {
		return fmt.Errorf("%w: cohere request without messages", ErrUnsupportedProvider)
	}
	lastIdx := len(req.Messages) - 1
	temperature := float64(req.Temperature)
	chatReq := cohere.ChatRequest{
		Model:       &req.Model,
		Temperature: &temperature,
		Message:     req.Messages[lastIdx].StringifiedContent(),
	}
	if req.MaxTokens > 0 {
		maxTokens := req.MaxTokens
		chatReq.MaxTokens = &maxTokens
	}
	if req.System != "" {
		system := req.System
		chatReq.Preamble = &system
	}
	for _, msg := range req.Messages[:lastIdx] {
		v := new(cohere.Message)
		msg.ToCohere(v)
		chatReq.ChatHistory = append(chatReq.ChatHistory, v)
	}
	var res cohere.NonStreamedChatResponse
	if err := instructors.FromCohere(c.cohere, instructorOptions(instructor.ProviderCohere)...).Chat(ctx, &chatReq, out, &res); err != nil {
		return err
	}
	if resp != nil {
		resp.FromCohere(&res)
	}
	return nil
}

// structureGemini sends the history as chat contents, temperature and token budget stay with the model defaults
func (c *InstructorClient) structureGemini(ctx context.Context, req *StructuredRequest, out any, resp *components.LLMResponse) error {
	if len(req.Messages) == 0 {
		return fmt.Errorf("%w: gemini request without messages", ErrUnsupportedProvider)
	}
	lastIdx := len(req.Messages) - 1
	last := new(genai.Content)
	req.Messages[lastIdx].ToGemini(last)
	chatReq := instructorGemini.Request{
		Model: req.Model,
		Parts: last.Parts,
	}
	if req.System != "" {
		chatReq.System = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}
	for _, msg := range req.Messages[:lastIdx] {
		v := new(genai.Content)
		msg.ToGemini(v)
		chatReq.History = append(chatReq.History, v)
	}
	var res genai.GenerateContentResponse
	if err := instructors.FromGemini(c.gemini, instructorOptions(instructor.ProviderGemini)...).Chat(ctx, &chatReq, out, &res); err != nil {
		return err
	}
	if resp != nil {
		resp.FromGemini(&res)
	}
	return nil
}
