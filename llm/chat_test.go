package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCredential struct {
	scopes []string
}

func (c *fakeCredential) GetToken(_ context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error) {
	c.scopes = opts.Scopes
	return azcore.AccessToken{Token: "ad-token", ExpiresOn: time.Now().Add(time.Hour)}, nil
}

type capturedRequest struct {
	path       string
	apiVersion string
	apiKey     string
	auth       string
	model      string
}

func startAzureServer(t *testing.T, captured *capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.path = r.URL.Path
		captured.apiVersion = r.URL.Query().Get("api-version")
		captured.apiKey = r.Header.Get("api-key")
		captured.auth = r.Header.Get("Authorization")
		var req openai.ChatCompletionRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		captured.model = req.Model
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:    "chatcmpl-1",
			Model: "gpt-4o",
			Choices: []openai.ChatCompletionChoice{{
				Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "hello"},
				FinishReason: openai.FinishReasonStop,
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewChatClient_AzureKey(t *testing.T) {
	var captured capturedRequest
	srv := startAzureServer(t, &captured)
	clt, err := NewChatClient(context.Background(), Config{
		APIKey:     "secret",
		Endpoint:   srv.URL,
		Deployment: "menswear-gpt",
	})
	require.NoError(t, err)

	resp, err := clt.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{
		Model:    "menswear-gpt",
		Messages: []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Choices[0].Message.Content)
	assert.Equal(t, "/openai/deployments/menswear-gpt/chat/completions", captured.path)
	assert.Equal(t, DefaultAPIVersion, captured.apiVersion)
	assert.Equal(t, "secret", captured.apiKey)
}

func TestOpenAIConfig_AzureADToken(t *testing.T) {
	var captured capturedRequest
	srv := startAzureServer(t, &captured)
	cred := new(fakeCredential)
	cfg := Config{Endpoint: srv.URL}.WithDefaults()
	clientConfig, err := openAIConfig(context.Background(), cfg, cred)
	require.NoError(t, err)
	assert.Equal(t, []string{CognitiveServicesScope}, cred.scopes)

	clt := openai.NewClientWithConfig(clientConfig)
	_, err = clt.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{
		Model:    cfg.Model(),
		Messages: []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer ad-token", captured.auth)
	assert.Empty(t, captured.apiKey)
}

func TestNewChatClient_Errors(t *testing.T) {
	ctx := context.Background()
	_, err := NewChatClient(ctx, Config{Provider: OpenAI})
	assert.ErrorIs(t, err, ErrCredentials)

	_, err = NewChatClient(ctx, Config{Provider: Anthropic, APIKey: "k"})
	assert.ErrorIs(t, err, ErrUnsupportedProvider)

	_, err = NewChatClient(ctx, Config{APIKey: "k"})
	assert.ErrorIs(t, err, ErrCredentials)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{Provider: OpenAI, APIKey: "k"}.Validate())
	assert.Error(t, Config{Provider: "bard"}.Validate())
	assert.Error(t, Config{Provider: Azure}.Validate())
}
