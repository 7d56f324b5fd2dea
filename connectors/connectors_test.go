package connectors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/content-agents/config"
	"github.com/bububa/content-agents/llm"
	"github.com/bububa/content-agents/tools/bing"
	"github.com/bububa/content-agents/tools/searxng"
)

func TestNewSearchConnector(t *testing.T) {
	clt, err := NewSearchConnector(config.SearchSettings{Provider: config.BingSearch, BingAPIKey: "key"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &bing.Connector{}, clt)

	clt, err = NewSearchConnector(config.SearchSettings{Provider: config.SearxNGSearch, SearxNGURL: "http://localhost:8080"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &searxng.SearxngSearch{}, clt)

	_, err = NewSearchConnector(config.SearchSettings{Provider: config.SearxNGSearch}, nil)
	assert.Error(t, err)

	_, err = NewSearchConnector(config.SearchSettings{Provider: "google"}, nil)
	assert.Error(t, err)
}

func TestBuild(t *testing.T) {
	s := config.Settings{
		LLM: llm.Config{
			Provider:   llm.Azure,
			APIKey:     "key",
			Endpoint:   "https://example.openai.azure.com",
			Deployment: "gpt-4o-mini",
		},
		Search: config.SearchSettings{Provider: config.BingSearch, BingAPIKey: "bing"},
	}
	set, err := Build(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", set.Model)
	assert.NotNil(t, set.Chat)
	assert.Nil(t, set.Structured)
	assert.NotNil(t, set.Embed)
	assert.IsType(t, &bing.Connector{}, set.Search)

	set, err = Build(context.Background(), s, WithStructured())
	require.NoError(t, err)
	require.IsType(t, &llm.InstructorClient{}, set.Structured)
	assert.Equal(t, llm.Azure, set.Structured.(*llm.InstructorClient).Provider())
}

func TestBuildStructuredOnlyWhenAsked(t *testing.T) {
	s := config.Settings{
		LLM: llm.Config{
			Provider: llm.Azure,
			APIKey:   "key",
			Endpoint: "https://example.openai.azure.com",
		},
		Structured: llm.Config{Provider: llm.Anthropic},
		Search:     config.SearchSettings{Provider: config.BingSearch, BingAPIKey: "bing"},
	}
	set, err := Build(context.Background(), s)
	require.NoError(t, err)
	assert.Nil(t, set.Structured)

	_, err = Build(context.Background(), s, WithStructured())
	assert.ErrorIs(t, err, llm.ErrCredentials)

	s.Structured.APIKey = "anthropic-key"
	set, err = Build(context.Background(), s, WithStructured())
	require.NoError(t, err)
	assert.Equal(t, llm.Anthropic, set.Structured.(*llm.InstructorClient).Provider())
}

func TestBuildMissingEndpoint(t *testing.T) {
	s := config.Settings{
		LLM:    llm.Config{Provider: llm.Azure, APIKey: "key"},
		Search: config.SearchSettings{Provider: config.BingSearch},
	}
	_, err := Build(context.Background(), s)
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrCredentials)
}
