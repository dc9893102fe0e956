package ingest_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/tailor/embedder/hash"
	"github.com/w-h-a/tailor/fault"
	"github.com/w-h-a/tailor/ingest"
	"github.com/w-h-a/tailor/store"
	"github.com/w-h-a/tailor/store/memory"
)

type mapSource struct {
	docs map[string]string
}

func (s *mapSource) List(ctx context.Context) ([]string, error) {
	names := make([]string, 0, len(s.docs))
	for name := range s.docs {
		names = append(names, name)
	}
	return names, nil
}

func (s *mapSource) Read(ctx context.Context, name string) ([]byte, error) {
	return []byte(s.docs[name]), nil
}

func TestPipelineIngestsJsonDocuments(t *testing.T) {
	source := &mapSource{docs: map[string]string{
		"compiler.json": `{"type":"project","title":"Compiler","content":"built a compiler for a toy language"}`,
		"garden.json":   `{"type":"volunteering","title":"Garden","content":"watered plants at the community garden"}`,
		"notes.txt":     `not json, not eligible`,
	}}

	vectorStore := memory.NewStore()

	pipeline := ingest.NewPipeline(
		ingest.WithSource(source),
		ingest.WithEmbedder(hash.NewEmbedder()),
		ingest.WithStore(vectorStore),
		ingest.WithOwner("ingest"),
	)

	report, err := pipeline.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, report.Documents)
	assert.Equal(t, 2, report.Chunks)
	assert.Equal(t, 1, report.Skipped)

	records, err := vectorStore.GetAll(context.Background(), "ingest")
	require.NoError(t, err)
	require.Len(t, records, 2)

	ids := []string{records[0].Id, records[1].Id}
	assert.Contains(t, ids, "compiler_json-0")
	assert.Contains(t, ids, "garden_json-0")

	for _, record := range records {
		assert.Len(t, record.Embedding, store.Dimension)
	}
}

func TestPipelineChunksLongContent(t *testing.T) {
	content := strings.Repeat("x", 510)
	source := &mapSource{docs: map[string]string{
		"long.json": `{"title":"Long","content":"` + content + `"}`,
	}}

	vectorStore := memory.NewStore()

	pipeline := ingest.NewPipeline(
		ingest.WithSource(source),
		ingest.WithEmbedder(hash.NewEmbedder()),
		ingest.WithStore(vectorStore),
		ingest.WithOwner("ingest"),
		ingest.WithMaxChars(500),
	)

	report, err := pipeline.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, report.Chunks)

	records, err := vectorStore.GetAll(context.Background(), "ingest")
	require.NoError(t, err)
	require.Len(t, records, 2)

	byId := map[string]store.Record{}
	for _, record := range records {
		byId[record.Id] = record
	}

	require.Contains(t, byId, "long_json-0")
	require.Contains(t, byId, "long_json-1")
	assert.Len(t, byId["long_json-0"].Content, 500)
	assert.Len(t, byId["long_json-1"].Content, 10)
	assert.Equal(t, content, byId["long_json-0"].Content+byId["long_json-1"].Content)
}

func TestPipelineRejectsSanitizeCollisions(t *testing.T) {
	source := &mapSource{docs: map[string]string{
		"a b.json": `{"title":"One","content":"some content"}`,
		"a_b.json": `{"title":"Two","content":"other content"}`,
	}}

	pipeline := ingest.NewPipeline(
		ingest.WithSource(source),
		ingest.WithEmbedder(hash.NewEmbedder()),
		ingest.WithStore(memory.NewStore()),
		ingest.WithOwner("ingest"),
	)

	_, err := pipeline.Run(context.Background())

	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.Validation))
}

func TestPipelineSkipsDocumentsWithoutContent(t *testing.T) {
	source := &mapSource{docs: map[string]string{
		"empty.json": `{"title":"Empty","content":""}`,
	}}

	vectorStore := memory.NewStore()

	pipeline := ingest.NewPipeline(
		ingest.WithSource(source),
		ingest.WithEmbedder(hash.NewEmbedder()),
		ingest.WithStore(vectorStore),
		ingest.WithOwner("ingest"),
	)

	report, err := pipeline.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, report.Documents)
	assert.Equal(t, 1, report.Skipped)
}
