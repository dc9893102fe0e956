package google

import (
	"context"
	"log/slog"

	"github.com/google/generative-ai-go/genai"
	"github.com/w-h-a/tailor/embedder"
	"github.com/w-h-a/tailor/fault"
	genaiopt "google.golang.org/api/option"
)

type googleEmbedder struct {
	options embedder.Options
	client  *genai.Client
}

func (e *googleEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := embedder.CheckText(text); err != nil {
		return nil, err
	}

	model := e.client.EmbeddingModel(e.options.Model)
	rsp, err := model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fault.Wrap(fault.BackendError, err, "google embeddings")
	}

	if rsp == nil || rsp.Embedding == nil || len(rsp.Embedding.Values) == 0 {
		return nil, fault.New(fault.BackendError, "no response from Google")
	}

	if err := embedder.CheckDimension(rsp.Embedding.Values); err != nil {
		return nil, err
	}

	return rsp.Embedding.Values, nil
}

func (e *googleEmbedder) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if err := embedder.CheckText(texts...); err != nil {
		return nil, err
	}

	model := e.client.EmbeddingModel(e.options.Model)

	batch := model.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}

	rsp, err := model.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fault.Wrap(fault.BackendError, err, "google embeddings")
	}

	if rsp == nil || len(rsp.Embeddings) != len(texts) {
		return nil, fault.New(fault.BackendError, "google returned an incomplete embedding batch")
	}

	vectors := make([][]float32, len(texts))
	for i, emb := range rsp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fault.New(fault.BackendError, "google returned an empty embedding at index %d", i)
		}
		if err := embedder.CheckDimension(emb.Values); err != nil {
			return nil, err
		}
		vectors[i] = emb.Values
	}

	return vectors, nil
}

func NewEmbedder(opts ...embedder.Option) embedder.Embedder {
	options := embedder.NewOptions(opts...)

	e := &googleEmbedder{
		options: options,
	}

	client, err := genai.NewClient(
		options.Context,
		genaiopt.WithAPIKey(options.ApiKey),
	)
	if err != nil {
		detail := "failed to create google embedder client"
		slog.ErrorContext(options.Context, detail, "error", err)
		panic(detail)
	}

	e.client = client

	return e
}
