package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/content-agents/llm"
)

func TestLoadSettingsDefaults(t *testing.T) {
	s, err := LoadSettings(MapLookup(nil))
	require.NoError(t, err)
	assert.Equal(t, DefaultAddr, s.Addr)
	assert.Equal(t, llm.Azure, s.LLM.Provider)
	assert.Equal(t, "2024-05-01-preview", s.LLM.APIVersion)
	assert.Equal(t, "gpt-4o", s.LLM.Deployment)
	assert.Equal(t, BingSearch, s.Search.Provider)
	assert.Zero(t, s.RunTimeout)
	assert.Equal(t, s.LLM, s.StructuredConfig())
}

func TestLoadSettings(t *testing.T) {
	s, err := LoadSettings(MapLookup(map[string]string{
		"AZURE_OPENAI_API_KEY":         "key",
		"AZURE_OPENAI_ENDPOINT":        "https://example.openai.azure.com",
		"AZURE_OPENAI_DEPLOYMENT_NAME": "menswear",
		"STRUCTURED_PROVIDER":          "anthropic",
		"STRUCTURED_API_KEY":           "sk-ant",
		"SEARCH_PROVIDER":              "searxng",
		"SEARXNG_URL":                  "http://localhost:8888",
		"RUN_TIMEOUT":                  "90s",
		"DEBUG":                        "true",
	}))
	require.NoError(t, err)
	assert.Equal(t, "key", s.LLM.APIKey)
	assert.Equal(t, "menswear", s.LLM.Deployment)
	assert.Equal(t, 90*time.Second, s.RunTimeout)
	assert.True(t, s.Debug)
	structured := s.StructuredConfig()
	assert.Equal(t, llm.Anthropic, structured.Provider)
	assert.Equal(t, "menswear", structured.Deployment)

	_, err = LoadSettings(MapLookup(map[string]string{"SEARCH_PROVIDER": "searxng"}))
	assert.Error(t, err, "searxng requires a url")
	_, err = LoadSettings(MapLookup(map[string]string{"RUN_TIMEOUT": "soon"}))
	assert.Error(t, err)
	_, err = LoadSettings(MapLookup(map[string]string{"SEARCH_PROVIDER": "google"}))
	assert.Error(t, err)
}

func TestEnvLookupDoesNotExport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("CONTENT_AGENTS_TEST_ONLY_KEY=from-dotenv\n"), 0o600))

	lookup, err := EnvLookup(path, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	v, found := lookup("CONTENT_AGENTS_TEST_ONLY_KEY")
	assert.True(t, found)
	assert.Equal(t, "from-dotenv", v)
	_, exported := os.LookupEnv("CONTENT_AGENTS_TEST_ONLY_KEY")
	assert.False(t, exported)

	t.Setenv("CONTENT_AGENTS_TEST_ONLY_KEY", "from-env")
	v, _ = lookup("CONTENT_AGENTS_TEST_ONLY_KEY")
	assert.Equal(t, "from-env", v)
}

func TestWithCredentials(t *testing.T) {
	base, err := LoadSettings(MapLookup(map[string]string{"LLM_PROVIDER": "openai", "OPENAI_API_KEY": "server"}))
	require.NoError(t, err)
	got := base.WithCredentials(Credentials{
		AzureOpenAIKey:      "form-key",
		AzureOpenAIEndpoint: "https://form.openai.azure.com",
		BingAPIKey:          "bing",
	})
	assert.Equal(t, llm.Azure, got.LLM.Provider)
	assert.Equal(t, "form-key", got.LLM.APIKey)
	assert.Equal(t, "gpt-4o", got.LLM.Deployment)
	assert.Equal(t, "bing", got.Search.BingAPIKey)
	assert.Equal(t, "server", base.LLM.APIKey, "base settings are not modified")
	assert.Equal(t, base, base.WithCredentials(Credentials{}))
}
