package openai

import (
	"context"
	"errors"

	"github.com/sashabaranov/go-openai"
	"github.com/w-h-a/insight/embedder"
)

type openAIEmbedder struct {
	options embedder.Options
	client  *openai.Client
}

func (e *openAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	rsp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(e.options.Model),
	})
	if err != nil {
		return nil, err
	}

	if len(rsp.Data) != len(texts) {
		return nil, errors.New("no response from OpenAI")
	}

	vectors := make([][]float32, len(rsp.Data))
	for i, d := range rsp.Data {
		vectors[i] = d.Embedding
	}

	return vectors, nil
}

func NewEmbedder(opts ...embedder.Option) embedder.Embedder {
	options := embedder.NewOptions(opts...)

	e := &openAIEmbedder{
		options: options,
	}

	client := openai.NewClient(options.ApiKey)

	e.client = client

	return e
}
