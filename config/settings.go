package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/bububa/content-agents/llm"
	"github.com/bububa/content-agents/schema"
)

const (
	DefaultAddr           = ":8501"
	BingSearch            = "bing"
	SearxNGSearch         = "searxng"
	DefaultSearchProvider = BingSearch
)

// SearchSettings selects and configures the web search connector
type SearchSettings struct {
	Provider     string `validate:"oneof=bing searxng"`
	BingAPIKey   string
	BingEndpoint string
	SearxNGURL   string `validate:"required_if=Provider searxng"`
}

// Settings is the explicit runtime configuration of the binaries.
// It is built once from the environment and copied per request, never written back.
type Settings struct {
	Addr string
	// ConfigDir overrides the embedded agents.yaml and tasks.yaml when set
	ConfigDir string
	// LLM is the chat completion service with function calling.
	// Credentials may be completed per request, they are checked when a client is built.
	LLM llm.Config `validate:"-"`
	// Structured is the service for structured output, the LLM service when its provider is empty
	Structured llm.Config `validate:"-"`
	Search     SearchSettings
	// RunTimeout bounds one flow run, 0 means no bound
	RunTimeout time.Duration `validate:"gte=0"`
	Debug      bool
}

// LookupFunc looks up a configuration variable
type LookupFunc func(key string) (string, bool)

// EnvLookup returns a lookup over the process environment falling back to the values of
// the dotenv files. Missing dotenv files are skipped and nothing is exported to the environment.
func EnvLookup(dotenvFiles ...string) (LookupFunc, error) {
	values := make(map[string]string)
	for _, filename := range dotenvFiles {
		if _, err := os.Stat(filename); os.IsNotExist(err) {
			continue
		}
		fileValues, err := godotenv.Read(filename)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filename, err)
		}
		for k, v := range fileValues {
			if _, found := values[k]; !found {
				values[k] = v
			}
		}
	}
	return func(key string) (string, bool) {
		if v, found := os.LookupEnv(key); found {
			return v, true
		}
		v, found := values[key]
		return v, found
	}, nil
}

// MapLookup returns a lookup over a fixed map
func MapLookup(values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, found := values[key]
		return v, found
	}
}

// LoadSettings builds the settings from lookup
func LoadSettings(lookup LookupFunc) (Settings, error) {
	get := func(key string, fallback string) string {
		if v, found := lookup(key); found && v != "" {
			return v
		}
		return fallback
	}
	ret := Settings{
		Addr:      get("LISTEN_ADDR", DefaultAddr),
		ConfigDir: get("CONTENT_AGENTS_CONFIG_DIR", ""),
		LLM: llm.Config{
			Provider:       get("LLM_PROVIDER", llm.Azure),
			APIKey:         get("AZURE_OPENAI_API_KEY", get("OPENAI_API_KEY", "")),
			Endpoint:       get("AZURE_OPENAI_ENDPOINT", get("OPENAI_BASE_URL", "")),
			APIVersion:     get("AZURE_OPENAI_API_VERSION", llm.DefaultAPIVersion),
			Deployment:     get("AZURE_OPENAI_DEPLOYMENT_NAME", get("OPENAI_MODEL", llm.DefaultDeployment)),
			EmbeddingModel: get("AZURE_OPENAI_EMBEDDING_DEPLOYMENT", llm.DefaultEmbeddingModel),
		},
		Structured: llm.Config{
			Provider:   get("STRUCTURED_PROVIDER", ""),
			APIKey:     get("STRUCTURED_API_KEY", ""),
			Endpoint:   get("STRUCTURED_ENDPOINT", ""),
			Deployment: get("STRUCTURED_MODEL", ""),
		},
		Search: SearchSettings{
			Provider:     get("SEARCH_PROVIDER", DefaultSearchProvider),
			BingAPIKey:   get("BING_API_KEY", ""),
			BingEndpoint: get("BING_ENDPOINT", ""),
			SearxNGURL:   get("SEARXNG_URL", ""),
		},
	}
	if v := get("RUN_TIMEOUT", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Settings{}, fmt.Errorf("RUN_TIMEOUT: %w", err)
		}
		ret.RunTimeout = d
	}
	if v := get("DEBUG", ""); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return Settings{}, fmt.Errorf("DEBUG: %w", err)
		}
		ret.Debug = debug
	}
	if err := schema.Validate(&ret); err != nil {
		return Settings{}, err
	}
	return ret, nil
}

// StructuredConfig returns the config of the structured output service
func (s Settings) StructuredConfig() llm.Config {
	if s.Structured.Provider == "" {
		return s.LLM
	}
	cfg := s.Structured
	if cfg.Deployment == "" {
		cfg.Deployment = s.LLM.Deployment
	}
	return cfg
}

// Credentials are the per request credentials entered in the UI
type Credentials struct {
	AzureOpenAIKey        string
	AzureOpenAIEndpoint   string
	AzureOpenAIVersion    string
	AzureOpenAIDeployment string
	BingAPIKey            string
}

// WithCredentials returns a copy of s with the non empty credentials applied
func (s Settings) WithCredentials(c Credentials) Settings {
	if c.AzureOpenAIKey != "" || c.AzureOpenAIEndpoint != "" {
		s.LLM.Provider = llm.Azure
	}
	if c.AzureOpenAIKey != "" {
		s.LLM.APIKey = c.AzureOpenAIKey
	}
	if c.AzureOpenAIEndpoint != "" {
		s.LLM.Endpoint = c.AzureOpenAIEndpoint
	}
	if c.AzureOpenAIVersion != "" {
		s.LLM.APIVersion = c.AzureOpenAIVersion
	}
	if c.AzureOpenAIDeployment != "" {
		s.LLM.Deployment = c.AzureOpenAIDeployment
	}
	if c.BingAPIKey != "" {
		s.Search.Provider = BingSearch
		s.Search.BingAPIKey = c.BingAPIKey
	}
	return s
}
