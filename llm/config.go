// Package llm builds the language model connectors used by agents and kernels.
//
// Chat completions with function calling go through go-openai (OpenAI or Azure OpenAI).
// Structured completions go through instructor-go, which also supports Anthropic, Cohere and Gemini.
package llm

import (
	"errors"
	"fmt"

	"github.com/bububa/content-agents/schema"
)

// Provider is the LLM vendor name
type Provider = string

const (
	Azure     Provider = "azure"
	OpenAI    Provider = "openai"
	Anthropic Provider = "anthropic"
	Cohere    Provider = "cohere"
	Gemini    Provider = "gemini"
)

const (
	// DefaultAPIVersion is the Azure OpenAI api-version used when none is configured
	DefaultAPIVersion = "2024-05-01-preview"
	// DefaultDeployment is the Azure OpenAI deployment used when none is configured
	DefaultDeployment = "gpt-4o"
	// DefaultEmbeddingModel is used by the site search tool
	DefaultEmbeddingModel = "text-embedding-3-small"
	// CognitiveServicesScope is the Azure AD scope for Azure OpenAI tokens
	CognitiveServicesScope = "https://cognitiveservices.azure.com/.default"
)

var (
	// ErrUnsupportedProvider is returned for providers a connector can not serve
	ErrUnsupportedProvider = errors.New("unsupported llm provider")
	// ErrCredentials is returned when credentials can not be resolved
	ErrCredentials = errors.New("llm credentials")
)

// Config holds the connection settings of one model service.
// It is passed explicitly to every constructor, nothing is read from the process environment here.
type Config struct {
	Provider   Provider `yaml:"provider" json:"provider" validate:"omitempty,oneof=azure openai anthropic cohere gemini"`
	APIKey     string   `yaml:"api_key" json:"-"`
	Endpoint   string   `yaml:"endpoint" json:"endpoint" validate:"required_if=Provider azure"`
	APIVersion string   `yaml:"api_version" json:"api_version"`
	// Deployment is the Azure deployment name; for other providers it is the model name
	Deployment string `yaml:"deployment" json:"deployment"`
	// EmbeddingModel is the embedding model (or Azure deployment) for semantic search
	EmbeddingModel string `yaml:"embedding_model" json:"embedding_model"`
}

// WithDefaults returns a copy of c with empty fields defaulted
func (c Config) WithDefaults() Config {
	if c.Provider == "" {
		c.Provider = Azure
	}
	if c.APIVersion == "" {
		c.APIVersion = DefaultAPIVersion
	}
	if c.Deployment == "" {
		c.Deployment = DefaultDeployment
	}
	if c.EmbeddingModel == "" {
		c.EmbeddingModel = DefaultEmbeddingModel
	}
	return c
}

// Model returns the model name to put into requests
func (c Config) Model() string {
	return c.Deployment
}

// Validate checks the configuration
func (c Config) Validate() error {
	if err := schema.Validate(&c); err != nil {
		return fmt.Errorf("llm config: %w", err)
	}
	return nil
}
