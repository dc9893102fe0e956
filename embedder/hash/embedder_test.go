package hash_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/tailor/embedder/hash"
	"github.com/w-h-a/tailor/fault"
	"github.com/w-h-a/tailor/rank"
	"github.com/w-h-a/tailor/store"
)

func TestEmbedReturnsFixedDimension(t *testing.T) {
	e := hash.NewEmbedder()

	vector, err := e.Embed(context.Background(), "shipped a payments service in go")

	require.NoError(t, err)
	assert.Len(t, vector, store.Dimension)
}

func TestEmbedIsDeterministic(t *testing.T) {
	e := hash.NewEmbedder()
	ctx := context.Background()

	a, err := e.Embed(ctx, "built a compiler")
	require.NoError(t, err)
	b, err := e.Embed(ctx, "built a compiler")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestEmbedIsUnitNormalized(t *testing.T) {
	e := hash.NewEmbedder()

	vector, err := e.Embed(context.Background(), "some text with several words")
	require.NoError(t, err)

	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}

	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
}

func TestEmbedRejectsEmptyText(t *testing.T) {
	e := hash.NewEmbedder()

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := e.Embed(context.Background(), text)
		require.Error(t, err)
		assert.True(t, fault.IsKind(err, fault.Validation))
	}
}

func TestEmbedManyPreservesOrder(t *testing.T) {
	e := hash.NewEmbedder()
	ctx := context.Background()

	texts := []string{"first text", "second text", "third text"}

	vectors, err := e.EmbedMany(ctx, texts)
	require.NoError(t, err)
	require.Len(t, vectors, 3)

	for i, text := range texts {
		single, err := e.Embed(ctx, text)
		require.NoError(t, err)
		assert.Equal(t, single, vectors[i])
	}
}

func TestSharedVocabularyScoresHigher(t *testing.T) {
	e := hash.NewEmbedder()
	ctx := context.Background()

	compiler, err := e.Embed(ctx, "built a compiler with llvm optimization passes")
	require.NoError(t, err)
	query, err := e.Embed(ctx, "compiler optimization work")
	require.NoError(t, err)
	plants, err := e.Embed(ctx, "watered plants in the garden")
	require.NoError(t, err)

	assert.Greater(t, rank.CosineSimilarity(query, compiler), rank.CosineSimilarity(query, plants))
}
