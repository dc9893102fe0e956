package tailor_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/tailor/embedder"
	"github.com/w-h-a/tailor/embedder/hash"
	"github.com/w-h-a/tailor/fault"
	"github.com/w-h-a/tailor/internal/service/tailor"
	"github.com/w-h-a/tailor/store"
	"github.com/w-h-a/tailor/store/memory"
)

type failingEmbedder struct{}

func (e *failingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, fault.New(fault.TemporarilyUnavailable, "embedding backend unavailable")
}

func (e *failingEmbedder) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, fault.New(fault.TemporarilyUnavailable, "embedding backend unavailable")
}

type scriptedGenerator struct {
	output  string
	prompts []string
}

func (g *scriptedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.output, nil
}

func newService(opts ...tailor.Option) (*tailor.Service, store.VectorStore) {
	s := memory.NewStore()

	opts = append([]tailor.Option{
		tailor.WithEmbedder(hash.NewEmbedder()),
		tailor.WithStore(s),
	}, opts...)

	return tailor.NewService(opts...), s
}

func experience(id, content string) store.Record {
	return store.Record{
		Id:      id,
		Type:    store.TypeProject,
		Title:   "title for " + id,
		Content: content,
	}
}

func TestAddExperienceEmbedsAndStores(t *testing.T) {
	service, vectorStore := newService()
	ctx := context.Background()

	require.NoError(t, service.AddExperience(ctx, "alice", experience("a", "built a compiler")))

	records, err := vectorStore.GetAll(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a", records[0].Id)
	assert.Equal(t, "alice", records[0].Owner)
	assert.Len(t, records[0].Embedding, store.Dimension)
}

func TestAddExperienceEmbedFailureAbortsWrite(t *testing.T) {
	vectorStore := memory.NewStore()
	service := tailor.NewService(
		tailor.WithEmbedder(&failingEmbedder{}),
		tailor.WithStore(vectorStore),
	)
	ctx := context.Background()

	err := service.AddExperience(ctx, "alice", experience("a", "built a compiler"))

	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.TemporarilyUnavailable))

	records, err := vectorStore.GetAll(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAddExperiencesBatch(t *testing.T) {
	service, vectorStore := newService()
	ctx := context.Background()

	err := service.AddExperiences(ctx, "alice", []store.Record{
		experience("a", "built a compiler"),
		experience("b", "watered plants"),
	})
	require.NoError(t, err)

	records, err := vectorStore.GetAll(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestAddExperiencesRejectsEmptyBatch(t *testing.T) {
	service, _ := newService()

	err := service.AddExperiences(context.Background(), "alice", nil)

	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.Validation))
}

func TestSearchReturnsMostRelevantExperience(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	require.NoError(t, service.AddExperience(ctx, "alice", experience("compiler", "built a compiler with llvm optimization passes")))
	require.NoError(t, service.AddExperience(ctx, "alice", experience("garden", "watered plants at the community garden")))

	results, err := service.Search(ctx, "compiler optimization work", 1)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "compiler", results[0].Id)
}

func TestSearchRejectsNonPositiveLimit(t *testing.T) {
	service, _ := newService()

	for _, limit := range []int{0, -3} {
		_, err := service.Search(context.Background(), "anything", limit)
		require.Error(t, err)
		assert.True(t, fault.IsKind(err, fault.Validation))
	}
}

func TestUpdateExperienceReEmbeds(t *testing.T) {
	service, vectorStore := newService()
	ctx := context.Background()

	require.NoError(t, service.AddExperience(ctx, "alice", experience("a", "built a compiler")))

	before, err := vectorStore.GetAll(ctx, "alice")
	require.NoError(t, err)

	updated := experience("a", "rewrote the compiler backend in go")
	updated.Owner = "alice"
	require.NoError(t, service.UpdateExperience(ctx, "a", "alice", updated))

	after, err := vectorStore.GetAll(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, "rewrote the compiler backend in go", after[0].Content)
	assert.NotEqual(t, before[0].Embedding, after[0].Embedding)
}

func TestUpdateExperienceForOtherOwnerIsNotFound(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	require.NoError(t, service.AddExperience(ctx, "alice", experience("a", "built a compiler")))

	tampered := experience("a", "tampered")
	tampered.Owner = "mallory"
	err := service.UpdateExperience(ctx, "a", "mallory", tampered)

	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.NotFound))
}

func TestDeleteExperienceTwiceIsNotFound(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	require.NoError(t, service.AddExperience(ctx, "alice", experience("a", "built a compiler")))
	require.NoError(t, service.DeleteExperience(ctx, "a", "alice"))

	err := service.DeleteExperience(ctx, "a", "alice")
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.NotFound))
}

func TestGenerateBulletsGroundsPromptOnSelectedExperiences(t *testing.T) {
	generator := &scriptedGenerator{output: "- Led the compiler rewrite\n- Cut build times in half\n- Mentored two engineers"}

	service, _ := newService(tailor.WithGenerator(generator))
	ctx := context.Background()

	require.NoError(t, service.AddExperience(ctx, "alice", experience("compiler", "rewrote the compiler backend")))
	require.NoError(t, service.AddExperience(ctx, "alice", experience("garden", "watered plants")))

	bullets, err := service.GenerateBullets(ctx, "alice", "compiler engineer role", 3, []string{"compiler"})

	require.NoError(t, err)
	assert.Equal(t, []string{
		"Led the compiler rewrite",
		"Cut build times in half",
		"Mentored two engineers",
	}, bullets)

	require.Len(t, generator.prompts, 1)
	assert.Contains(t, generator.prompts[0], "rewrote the compiler backend")
	assert.NotContains(t, generator.prompts[0], "watered plants")
}

func TestGenerateBulletsRequiresSelection(t *testing.T) {
	service, _ := newService(tailor.WithGenerator(&scriptedGenerator{}))

	_, err := service.GenerateBullets(context.Background(), "alice", "compiler engineer role", 3, nil)

	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.Validation))
}

func TestGenerateBulletsUnknownSelectionIsNotFound(t *testing.T) {
	service, _ := newService(tailor.WithGenerator(&scriptedGenerator{output: "- something"}))

	_, err := service.GenerateBullets(context.Background(), "alice", "compiler engineer role", 3, []string{"missing"})

	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.NotFound))
}

func TestGenerateBulletsWithoutGeneratorIsValidation(t *testing.T) {
	service, _ := newService()

	_, err := service.GenerateBullets(context.Background(), "alice", "role", 3, []string{"a"})

	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.Validation))
}

func TestSearchUsesQueryEmbedderWhenProvided(t *testing.T) {
	var queried bool

	query := embedderFunc(func(ctx context.Context, text string) ([]float32, error) {
		queried = true
		return hash.NewEmbedder().Embed(ctx, text)
	})

	vectorStore := memory.NewStore()
	service := tailor.NewService(
		tailor.WithEmbedder(hash.NewEmbedder()),
		tailor.WithQueryEmbedder(query),
		tailor.WithStore(vectorStore),
	)

	_, err := service.Search(context.Background(), "compiler", 3)

	require.NoError(t, err)
	assert.True(t, queried)
}

type embedderFunc func(ctx context.Context, text string) ([]float32, error)

func (f embedderFunc) Embed(ctx context.Context, text string) ([]float32, error) {
	return f(ctx, text)
}

func (f embedderFunc) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vector, err := f(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vector
	}
	return vectors, nil
}

var _ embedder.Embedder = embedderFunc(nil)
