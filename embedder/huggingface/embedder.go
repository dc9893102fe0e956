package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/w-h-a/tailor/embedder"
	"github.com/w-h-a/tailor/fault"
)

const defaultLocation = "https://api-inference.huggingface.co"

// hfEmbedder calls a hosted sentence-transformer over the inference API.
// Some deployments return one pooled vector per input, others return the
// raw per-token matrix; the latter is mean-pooled here before dimension
// validation.
type hfEmbedder struct {
	options embedder.Options
	client  *http.Client
}

type embedRequest struct {
	Inputs  []string     `json:"inputs"`
	Options embedOptions `json:"options"`
}

type embedOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

func (e *hfEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *hfEmbedder) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if err := embedder.CheckText(texts...); err != nil {
		return nil, err
	}

	req := embedRequest{
		Inputs:  texts,
		Options: embedOptions{WaitForModel: false},
	}

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fault.Wrap(fault.Validation, err, "marshal embed request")
	}

	u := fmt.Sprintf("%s/models/%s", e.options.Location, url.PathEscape(e.options.Model))

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return nil, fault.Wrap(fault.Validation, err, "build embed request")
	}

	request.Header.Set("Content-Type", "application/json")
	if len(e.options.ApiKey) > 0 {
		request.Header.Set("Authorization", "Bearer "+e.options.ApiKey)
	}

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
	case response.StatusCode == http.StatusServiceUnavailable:
		// the hosted model is still loading
		return nil, fault.New(fault.TemporarilyUnavailable, "model %s warming up: %s", e.options.Model, string(payload))
	case response.StatusCode == http.StatusUnauthorized:
		return nil, fault.New(fault.AuthenticationFailed, "embedding backend rejected credentials: %s", string(payload))
	case response.StatusCode != http.StatusOK:
		return nil, fault.New(fault.BackendError, "embedding backend %d: %s", response.StatusCode, string(payload))
	}

	vectors, err := decode(payload, len(texts))
	if err != nil {
		return nil, err
	}

	for _, vector := range vectors {
		if err := embedder.CheckDimension(vector); err != nil {
			return nil, err
		}
	}

	return vectors, nil
}

// decode accepts either [][]float32 (pooled) or [][][]float32 (per-token)
// and returns one pooled vector per input.
func decode(payload []byte, want int) ([][]float32, error) {
	var pooled [][]float32
	if err := json.Unmarshal(payload, &pooled); err == nil && len(pooled) == want {
		return pooled, nil
	}

	var tokenwise [][][]float32
	if err := json.Unmarshal(payload, &tokenwise); err == nil && len(tokenwise) == want {
		vectors := make([][]float32, len(tokenwise))
		for i, tokens := range tokenwise {
			vectors[i] = meanPool(tokens)
		}
		return vectors, nil
	}

	return nil, fault.New(fault.BackendError, "embedding backend returned an unexpected payload shape")
}

func meanPool(tokens [][]float32) []float32 {
	if len(tokens) == 0 {
		return nil
	}

	pooled := make([]float32, len(tokens[0]))
	for _, token := range tokens {
		for i, v := range token {
			if i < len(pooled) {
				pooled[i] += v
			}
		}
	}

	n := float32(len(tokens))
	for i := range pooled {
		pooled[i] /= n
	}

	return pooled
}

func NewEmbedder(opts ...embedder.Option) embedder.Embedder {
	options := embedder.NewOptions(opts...)

	if len(options.Location) == 0 {
		options.Location = defaultLocation
	}

	if len(options.Model) == 0 {
		detail := "missing model for huggingface embedder"
		slog.ErrorContext(options.Context, detail)
		panic(detail)
	}

	client := options.Client
	if client == nil {
		client = &http.Client{
			Timeout: 30 * time.Second,
		}
	}

	return &hfEmbedder{
		options: options,
		client:  client,
	}
}
