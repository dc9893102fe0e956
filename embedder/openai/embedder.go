package openai

import (
	"context"

	"github.com/sashabaranov/go-openai"
	"github.com/w-h-a/tailor/embedder"
	"github.com/w-h-a/tailor/fault"
	"github.com/w-h-a/tailor/store"
)

type openAIEmbedder struct {
	options embedder.Options
	client  *openai.Client
}

func (e *openAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *openAIEmbedder) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if err := embedder.CheckText(texts...); err != nil {
		return nil, err
	}

	rsp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(e.options.Model),
		// the store schema is fixed-width, so ask the model to project
		Dimensions: store.Dimension,
	})
	if err != nil {
		return nil, fault.Wrap(fault.BackendError, err, "openai embeddings")
	}

	if len(rsp.Data) != len(texts) {
		return nil, fault.New(fault.BackendError, "openai returned %d vectors for %d texts", len(rsp.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, data := range rsp.Data {
		if data.Index < 0 || data.Index >= len(vectors) {
			return nil, fault.New(fault.BackendError, "openai returned out-of-range index %d", data.Index)
		}
		if err := embedder.CheckDimension(data.Embedding); err != nil {
			return nil, err
		}
		vectors[data.Index] = data.Embedding
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
