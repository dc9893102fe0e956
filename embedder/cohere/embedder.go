package cohere

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/w-h-a/tailor/embedder"
	"github.com/w-h-a/tailor/fault"
)

const (
	defaultLocation  = "https://api.cohere.com"
	defaultModel     = "embed-english-light-v3.0"
	defaultInputType = "search_document"
)

type cohereEmbedder struct {
	options embedder.Options
	client  *http.Client
}

type embedRequest struct {
	Model          string   `json:"model"`
	Texts          []string `json:"texts"`
	InputType      string   `json:"input_type"`
	EmbeddingTypes []string `json:"embedding_types"`
}

type embedResponse struct {
	Embeddings struct {
		Float [][]float32 `json:"float"`
	} `json:"embeddings"`
	Message string `json:"message"`
}

func (e *cohereEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *cohereEmbedder) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if err := embedder.CheckText(texts...); err != nil {
		return nil, err
	}

	req := embedRequest{
		Model:          e.options.Model,
		Texts:          texts,
		InputType:      e.options.InputType,
		EmbeddingTypes: []string{"float"},
	}

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fault.Wrap(fault.Validation, err, "marshal embed request")
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, e.options.Location+"/v2/embed", bytes.NewReader(data))
	if err != nil {
		return nil, fault.Wrap(fault.Validation, err, "build embed request")
	}

	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+e.options.ApiKey)

	response, err := e.client.Do(request)
	if err != nil {
		return nil, fault.Wrap(fault.TemporarilyUnavailable, err, "embedding backend unreachable")
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fault.Wrap(fault.TemporarilyUnavailable, err, "read embedding response")
	}

	switch {
	case response.StatusCode == http.StatusUnauthorized:
		return nil, fault.New(fault.AuthenticationFailed, "embedding backend rejected credentials: %s", string(payload))
	case response.StatusCode == http.StatusServiceUnavailable:
		return nil, fault.New(fault.TemporarilyUnavailable, "embedding backend unavailable: %s", string(payload))
	case response.StatusCode != http.StatusOK:
		return nil, fault.New(fault.BackendError, "embedding backend %d: %s", response.StatusCode, string(payload))
	}

	var rsp embedResponse
	if err := json.Unmarshal(payload, &rsp); err != nil {
		return nil, fault.Wrap(fault.BackendError, err, "decode embedding response")
	}

	vectors := rsp.Embeddings.Float
	if len(vectors) != len(texts) {
		return nil, fault.New(fault.BackendError, "embedding backend returned %d vectors for %d texts", len(vectors), len(texts))
	}

	for _, vector := range vectors {
		if err := embedder.CheckDimension(vector); err != nil {
			return nil, err
		}
	}

	return vectors, nil
}

func NewEmbedder(opts ...embedder.Option) embedder.Embedder {
	options := embedder.NewOptions(opts...)

	if len(options.Location) == 0 {
		options.Location = defaultLocation
	}
	if len(options.Model) == 0 {
		options.Model = defaultModel
	}
	if len(options.InputType) == 0 {
		options.InputType = defaultInputType
	}

	if len(options.ApiKey) == 0 {
		detail := "missing api key for cohere embedder"
		slog.ErrorContext(options.Context, detail)
		panic(detail)
	}

	client := options.Client
	if client == nil {
		client = &http.Client{
			Timeout: 30 * time.Second,
		}
	}

	return &cohereEmbedder{
		options: options,
		client:  client,
	}
}
