package cohere_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/tailor/embedder"
	"github.com/w-h-a/tailor/embedder/cohere"
	"github.com/w-h-a/tailor/fault"
	"github.com/w-h-a/tailor/store"
)

type embedResponse struct {
	Embeddings struct {
		Float [][]float32 `json:"float"`
	} `json:"embeddings"`
}

func vectorOf(fill float32) []float32 {
	v := make([]float32, store.Dimension)
	for i := range v {
		v[i] = fill
	}
	return v
}

func TestEmbedManySendsInputTypeAndPreservesOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/embed", r.URL.Path)
		assert.Equal(t, "Bearer co_test", r.Header.Get("Authorization"))

		var req struct {
			Model          string   `json:"model"`
			Texts          []string `json:"texts"`
			InputType      string   `json:"input_type"`
			EmbeddingTypes []string `json:"embedding_types"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "embed-english-light-v3.0", req.Model)
		assert.Equal(t, "search_query", req.InputType)
		assert.Equal(t, []string{"float"}, req.EmbeddingTypes)

		var rsp embedResponse
		for i := range req.Texts {
			rsp.Embeddings.Float = append(rsp.Embeddings.Float, vectorOf(float32(i)))
		}
		json.NewEncoder(w).Encode(rsp)
	}))
	defer server.Close()

	e := cohere.NewEmbedder(
		embedder.WithLocation(server.URL),
		embedder.WithApiKey("co_test"),
		embedder.WithInputType("search_query"),
	)

	vectors, err := e.EmbedMany(context.Background(), []string{"one", "two"})

	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.InDelta(t, 0.0, vectors[0][0], 1e-6)
	assert.InDelta(t, 1.0, vectors[1][0], 1e-6)
}

func TestEmbedBadCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid api token"}`))
	}))
	defer server.Close()

	e := cohere.NewEmbedder(
		embedder.WithLocation(server.URL),
		embedder.WithApiKey("bad"),
	)

	_, err := e.Embed(context.Background(), "built a compiler")

	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.AuthenticationFailed))
}

func TestEmbedVectorCountMismatchIsBackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var rsp embedResponse
		rsp.Embeddings.Float = [][]float32{vectorOf(1)}
		json.NewEncoder(w).Encode(rsp)
	}))
	defer server.Close()

	e := cohere.NewEmbedder(
		embedder.WithLocation(server.URL),
		embedder.WithApiKey("co_test"),
	)

	_, err := e.EmbedMany(context.Background(), []string{"one", "two"})

	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.BackendError))
}

func TestEmbedWrongDimension(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var rsp embedResponse
		rsp.Embeddings.Float = [][]float32{make([]float32, 1024)}
		json.NewEncoder(w).Encode(rsp)
	}))
	defer server.Close()

	e := cohere.NewEmbedder(
		embedder.WithLocation(server.URL),
		embedder.WithApiKey("co_test"),
	)

	_, err := e.Embed(context.Background(), "built a compiler")

	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.DimensionMismatch))
}

func TestNewEmbedderPanicsWithoutApiKey(t *testing.T) {
	assert.Panics(t, func() {
		cohere.NewEmbedder()
	})
}
