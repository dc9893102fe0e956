package hash

import (
	"context"
	"hash/fnv"
	"math"
	"strings"

	"github.com/w-h-a/tailor/embedder"
	"github.com/w-h-a/tailor/store"
)

// hashEmbedder is the local, in-process embedding strategy: feature
// hashing of word unigrams and bigrams into a fixed number of buckets,
// L2-normalized. It is deterministic, needs no credentials, and is the
// embedder the tests run against. Texts sharing vocabulary land in nearby
// directions, which is enough to exercise ranking end to end.
type hashEmbedder struct {
	options embedder.Options
}

func (e *hashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := embedder.CheckText(text); err != nil {
		return nil, err
	}

	vector := make([]float32, store.Dimension)

	terms := tokenize(text)
	for _, term := range terms {
		bucket, sign := slot(term)
		vector[bucket] += sign
	}

	normalize(vector)

	if err := embedder.CheckDimension(vector); err != nil {
		return nil, err
	}

	return vector, nil
}

func (e *hashEmbedder) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if err := embedder.CheckText(texts...); err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vector, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vector
	}

	return vectors, nil
}

func tokenize(text string) []string {
	words := strings.Fields(strings.ToLower(text))

	terms := make([]string, 0, len(words)*2)
	for i, word := range words {
		word = strings.Trim(word, ".,;:!?\"'()[]")
		if len(word) == 0 {
			continue
		}
		terms = append(terms, word)
		if i+1 < len(words) {
			next := strings.Trim(words[i+1], ".,;:!?\"'()[]")
			if len(next) > 0 {
				terms = append(terms, word+" "+next)
			}
		}
	}

	return terms
}

func slot(term string) (bucket int, sign float32) {
	h := fnv.New64a()
	h.Write([]byte(term))
	sum := h.Sum64()

	bucket = int(sum % uint64(store.Dimension))
	if (sum>>63)&1 == 1 {
		return bucket, -1.0
	}
	return bucket, 1.0
}

func normalize(vector []float32) {
	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return
	}
	norm = math.Sqrt(norm)
	for i := range vector {
		vector[i] = float32(float64(vector[i]) / norm)
	}
}

func NewEmbedder(opts ...embedder.Option) embedder.Embedder {
	options := embedder.NewOptions(opts...)

	return &hashEmbedder{
		options: options,
	}
}
