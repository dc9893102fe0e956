package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/w-h-a/tailor/fault"
	"github.com/w-h-a/tailor/store"
	"golang.org/x/sync/errgroup"
)

// document is the shape of a source file. Only content is required; the
// rest carries through to the stored chunks.
type document struct {
	Type      string   `json:"type"`
	Title     string   `json:"title"`
	DateRange *string  `json:"date_range"`
	Skills    []string `json:"skills"`
	Industry  []string `json:"industry"`
	Tags      []string `json:"tags"`
	Content   string   `json:"content"`
}

type Report struct {
	Documents int
	Skipped   int
	Chunks    int
}

// Pipeline turns source documents into embedded chunk records and
// bulk-loads them. The upload is a single UpsertMany call, so a batch
// either lands whole or not at all; chunk ids are deterministic, which
// makes a re-run after failure idempotent.
type Pipeline struct {
	options Options
}

func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	report := Report{}

	runId := uuid.New().String()
	logger := slog.With("run_id", runId)

	names, err := p.options.Source.List(ctx)
	if err != nil {
		return report, fault.Wrap(fault.StoreUnavailable, err, "list source documents")
	}

	var records []store.Record
	sanitized := map[string]string{}

	for _, name := range names {
		if !strings.HasSuffix(name, ".json") {
			report.Skipped++
			continue
		}

		data, err := p.options.Source.Read(ctx, name)
		if err != nil {
			return report, fault.Wrap(fault.StoreUnavailable, err, "read source document %s", name)
		}

		var doc document
		if err := json.Unmarshal(data, &doc); err != nil {
			return report, fault.Wrap(fault.Validation, err, "decode source document %s", name)
		}

		if len(strings.TrimSpace(doc.Content)) == 0 {
			logger.WarnContext(ctx, "skipping document without content", "document", name)
			report.Skipped++
			continue
		}

		safe := SanitizeID(name)
		if prior, exists := sanitized[safe]; exists && prior != name {
			return report, fault.New(fault.Validation, "documents %s and %s sanitize to the same id %s", prior, name, safe)
		}
		sanitized[safe] = name

		for i, chunk := range ChunkText(doc.Content, p.options.MaxChars) {
			records = append(records, p.record(doc, name, safe, i, chunk))
		}

		report.Documents++
	}

	if len(records) == 0 {
		logger.InfoContext(ctx, "nothing to ingest", "skipped", report.Skipped)
		return report, nil
	}

	if err := p.embed(ctx, records); err != nil {
		return report, err
	}

	if err := p.options.Store.UpsertMany(ctx, records); err != nil {
		return report, err
	}

	report.Chunks = len(records)

	logger.InfoContext(ctx, "ingestion complete",
		"documents", report.Documents,
		"chunks", report.Chunks,
		"skipped", report.Skipped,
	)

	return report, nil
}

func (p *Pipeline) record(doc document, name string, safe string, index int, chunk string) store.Record {
	recordType := doc.Type
	if len(recordType) == 0 {
		recordType = store.TypeProject
	}

	title := doc.Title
	if len(title) == 0 {
		title = name
	}

	return store.Record{
		Id:        fmt.Sprintf("%s-%d", safe, index),
		Owner:     p.options.Owner,
		Type:      recordType,
		Title:     title,
		DateRange: doc.DateRange,
		Skills:    doc.Skills,
		Industry:  doc.Industry,
		Tags:      doc.Tags,
		Content:   chunk,
	}
}

// embed fills in each record's embedding. Chunks are embedded
// concurrently; each goroutine writes through its captured index, so
// completion order never reorders results.
func (p *Pipeline) embed(ctx context.Context, records []store.Record) error {
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.options.Workers)

	for i := range records {
		group.Go(func() error {
			vector, err := p.options.Embedder.Embed(groupCtx, records[i].Content)
			if err != nil {
				return err
			}
			records[i].Embedding = vector
			return nil
		})
	}

	return group.Wait()
}

func NewPipeline(opts ...Option) *Pipeline {
	options := NewOptions(opts...)

	if options.Source == nil || options.Embedder == nil || options.Store == nil {
		detail := "missing source, embedder, or store for ingestion pipeline"
		slog.ErrorContext(options.Context, detail)
		panic(detail)
	}

	if options.Workers < 1 {
		options.Workers = 1
	}

	return &Pipeline{
		options: options,
	}
}
