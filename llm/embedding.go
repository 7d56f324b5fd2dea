package llm

import (
	"context"
	"errors"

	"github.com/philippgille/chromem-go"
	openai "github.com/sashabaranov/go-openai"
)

// EmbeddingCreator creates embeddings. *openai.Client satisfies it.
type EmbeddingCreator interface {
	CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// NewEmbeddingFunc returns a chromem embedding function backed by clt
func NewEmbeddingFunc(clt EmbeddingCreator, model string) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		res, err := clt.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: []string{text},
			Model: openai.EmbeddingModel(model),
		})
		if err != nil {
			return nil, err
		}
		if len(res.Data) == 0 {
			return nil, errors.New("empty embedding response")
		}
		return res.Data[0].Embedding, nil
	}
}
