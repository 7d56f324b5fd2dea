// Package connectors builds the model and search clients of one flow run from explicit settings.
package connectors

import (
	"context"
	"fmt"
	"net/http"

	"github.com/philippgille/chromem-go"
	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/content-agents/config"
	"github.com/bububa/content-agents/llm"
	"github.com/bububa/content-agents/tools/bing"
	"github.com/bububa/content-agents/tools/searxng"
	"github.com/bububa/content-agents/tools/websearch"
)

// Set is the clients of one run
type Set struct {
	// Chat is the chat completion client with function calling
	Chat *openai.Client
	// Model is the model or Azure deployment name put into requests
	Model string
	// Structured is the structured output client, nil unless built WithStructured
	Structured llm.StructuredClient
	// Embed embeds site search passages
	Embed chromem.EmbeddingFunc
	// Search is the web search backend
	Search websearch.Connector
	// HTTPClient is used by the search, scrape and site search tools, nil for their defaults
	HTTPClient *http.Client
}

type Option func(*options)

type options struct {
	httpClient *http.Client
	structured bool
}

// WithHttpClient sets the http client of the search and scraping tools
func WithHttpClient(clt *http.Client) Option {
	return func(o *options) {
		o.httpClient = clt
	}
}

// WithStructured also builds the structured output client
func WithStructured() Option {
	return func(o *options) {
		o.structured = true
	}
}

// Build returns the clients described by s
func Build(ctx context.Context, s config.Settings, opts ...Option) (*Set, error) {
	o := new(options)
	for _, opt := range opts {
		opt(o)
	}
	chatConfig := s.LLM.WithDefaults()
	chat, err := llm.NewChatClient(ctx, chatConfig)
	if err != nil {
		return nil, fmt.Errorf("chat client: %w", err)
	}
	search, err := NewSearchConnector(s.Search, o.httpClient)
	if err != nil {
		return nil, err
	}
	set := &Set{
		Chat:       chat,
		Model:      chatConfig.Model(),
		Embed:      llm.NewEmbeddingFunc(chat, chatConfig.EmbeddingModel),
		Search:     search,
		HTTPClient: o.httpClient,
	}
	if o.structured {
		var structuredOpts []llm.StructuredOption
		// the chat service doubles as structured service unless one is configured
		if s.Structured.Provider == "" {
			structuredOpts = append(structuredOpts, llm.WithChatClient(chat))
		}
		structured, err := llm.NewStructuredClient(ctx, s.StructuredConfig(), structuredOpts...)
		if err != nil {
			return nil, fmt.Errorf("structured client: %w", err)
		}
		set.Structured = structured
	}
	return set, nil
}

// NewSearchConnector returns the web search backend selected by s
func NewSearchConnector(s config.SearchSettings, clt *http.Client) (websearch.Connector, error) {
	if clt == nil {
		clt = http.DefaultClient
	}
	switch s.Provider {
	case "", config.BingSearch:
		opts := []bing.Option{bing.WithHttpClient(clt)}
		if s.BingEndpoint != "" {
			opts = append(opts, bing.WithBaseURL(s.BingEndpoint))
		}
		return bing.New(s.BingAPIKey, opts...), nil
	case config.SearxNGSearch:
		if s.SearxNGURL == "" {
			return nil, fmt.Errorf("searxng: base url is required")
		}
		return searxng.New(searxng.WithBaseURL(s.SearxNGURL), searxng.WithHttpClient(clt)), nil
	default:
		return nil, fmt.Errorf("unsupported search provider %q", s.Provider)
	}
}
