package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	openai "github.com/sashabaranov/go-openai"
)

// ChatCompleter is the chat completion surface agents depend on.
// *openai.Client satisfies it.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

var _ ChatCompleter = (*openai.Client)(nil)

// NewChatClient returns a go-openai client for the azure or openai provider.
// An Azure config without api key authenticates with the default Azure credential chain.
func NewChatClient(ctx context.Context, cfg Config) (*openai.Client, error) {
	clientConfig, err := openAIConfig(ctx, cfg.WithDefaults(), nil)
	if err != nil {
		return nil, err
	}
	return openai.NewClientWithConfig(clientConfig), nil
}

func openAIConfig(ctx context.Context, cfg Config, cred azcore.TokenCredential) (openai.ClientConfig, error) {
	switch cfg.Provider {
	case Azure:
		if cfg.Endpoint == "" {
			return openai.ClientConfig{}, fmt.Errorf("%w: azure endpoint is required", ErrCredentials)
		}
		var clientConfig openai.ClientConfig
		if cfg.APIKey != "" {
			clientConfig = openai.DefaultAzureConfig(cfg.APIKey, cfg.Endpoint)
		} else {
			token, err := azureADToken(ctx, cred)
			if err != nil {
				return openai.ClientConfig{}, err
			}
			clientConfig = openai.DefaultAzureConfig(token, cfg.Endpoint)
			clientConfig.APIType = openai.APITypeAzureAD
		}
		clientConfig.APIVersion = cfg.APIVersion
		deployment, embedding := cfg.Deployment, cfg.EmbeddingModel
		clientConfig.AzureModelMapperFunc = func(model string) string {
			if model == embedding {
				return embedding
			}
			return deployment
		}
		return clientConfig, nil
	case OpenAI:
		if cfg.APIKey == "" {
			return openai.ClientConfig{}, fmt.Errorf("%w: openai api key is required", ErrCredentials)
		}
		clientConfig := openai.DefaultConfig(cfg.APIKey)
		if cfg.Endpoint != "" {
			clientConfig.BaseURL = cfg.Endpoint
		}
		return clientConfig, nil
	default:
		return openai.ClientConfig{}, fmt.Errorf("%w: %s has no chat completion connector", ErrUnsupportedProvider, cfg.Provider)
	}
}

func azureADToken(ctx context.Context, cred azcore.TokenCredential) (string, error) {
	if cred == nil {
		defaultCred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrCredentials, err)
		}
		cred = defaultCred
	}
	slog.DebugContext(ctx, "acquiring Azure AD token for Cognitive Services")
	token, err := cred.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{CognitiveServicesScope},
	})
	if err != nil {
		return "", fmt.Errorf("%w: get azure token: %w", ErrCredentials, err)
	}
	slog.DebugContext(ctx, "using Azure AD token authentication", "token_expires_on", token.ExpiresOn)
	return token.Token, nil
}
