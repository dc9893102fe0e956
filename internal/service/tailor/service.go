package tailor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/w-h-a/tailor/fault"
	"github.com/w-h-a/tailor/store"
)

// Service is the retrieval core: it owns the embed-then-write invariant
// and the embed-then-search read path. The embedder and store are
// long-lived, constructed once at process start, and safe for concurrent
// use.
type Service struct {
	options Options
}

// AddExperience embeds the record's content and persists it. Embedding
// failure aborts the write, so a record is never stored without its
// vector.
func (s *Service) AddExperience(ctx context.Context, owner string, record store.Record) error {
	record.Owner = owner

	vector, err := s.options.Embedder.Embed(ctx, record.Content)
	if err != nil {
		return err
	}

	record.Embedding = vector

	return s.options.Store.Upsert(ctx, record)
}

// AddExperiences embeds a batch in one call and loads it all-or-nothing.
func (s *Service) AddExperiences(ctx context.Context, owner string, records []store.Record) error {
	if len(records) == 0 {
		return fault.New(fault.Validation, "no experiences to add")
	}

	texts := make([]string, len(records))
	for i, record := range records {
		texts[i] = record.Content
	}

	vectors, err := s.options.Embedder.EmbedMany(ctx, texts)
	if err != nil {
		return err
	}

	for i := range records {
		records[i].Owner = owner
		records[i].Embedding = vectors[i]
	}

	return s.options.Store.UpsertMany(ctx, records)
}

func (s *Service) ListExperiences(ctx context.Context, owner string) ([]store.Record, error) {
	return s.options.Store.GetAll(ctx, owner)
}

// UpdateExperience re-embeds the new content and replaces the record,
// provided id and owner both match.
func (s *Service) UpdateExperience(ctx context.Context, id string, owner string, record store.Record) error {
	vector, err := s.options.Embedder.Embed(ctx, record.Content)
	if err != nil {
		return err
	}

	record.Embedding = vector

	return s.options.Store.Update(ctx, id, owner, record)
}

func (s *Service) DeleteExperience(ctx context.Context, id string, owner string) error {
	return s.options.Store.Delete(ctx, id, owner)
}

// Search embeds the query text and returns up to limit records ranked by
// descending similarity.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]store.QueryResult, error) {
	if limit < 1 {
		return nil, fault.New(fault.Validation, "limit must be positive")
	}

	vector, err := s.options.QueryEmbedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	return s.options.Store.Search(ctx, vector, limit)
}

// GenerateBullets asks the text-completion capability for resume bullets
// grounded on the caller's selected experiences.
func (s *Service) GenerateBullets(ctx context.Context, owner string, jobDescription string, numBullets int, experienceIds []string) ([]string, error) {
	if s.options.Generator == nil {
		return nil, fault.New(fault.Validation, "no generator configured")
	}
	if len(strings.TrimSpace(jobDescription)) == 0 {
		return nil, fault.New(fault.Validation, "job description is required")
	}
	if len(experienceIds) == 0 {
		return nil, fault.New(fault.Validation, "select at least one experience to generate bullets from")
	}
	if numBullets < 1 {
		numBullets = 3
	}

	records, err := s.selectExperiences(ctx, owner, experienceIds)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fault.New(fault.NotFound, "no experiences found")
	}

	prompt := buildBulletPrompt(jobDescription, numBullets, records)

	output, err := s.options.Generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fault.Wrap(fault.BackendError, err, "bullet generation")
	}

	bullets := parseBullets(output, numBullets)

	slog.InfoContext(ctx, "generated bullets", "owner", owner, "requested", numBullets, "returned", len(bullets))

	return bullets, nil
}

func (s *Service) selectExperiences(ctx context.Context, owner string, ids []string) ([]store.Record, error) {
	all, err := s.options.Store.GetAll(ctx, owner)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	selected := make([]store.Record, 0, len(ids))
	for _, record := range all {
		if _, ok := wanted[record.Id]; ok {
			selected = append(selected, record)
		}
	}

	return selected, nil
}

func buildBulletPrompt(jobDescription string, numBullets int, records []store.Record) string {
	var context strings.Builder
	for i, record := range records {
		if i > 0 {
			context.WriteString("\n\n")
		}
		fmt.Fprintf(&context, "Project: %s\nContent: %s\nSkills: %s", record.Title, record.Content, strings.Join(record.Skills, ", "))
	}

	return fmt.Sprintf(`You are a professional resume writer. Create %d compelling resume bullet points based STRICTLY on the candidate's experience provided below. DO NOT invent or add any information not present in the experience.

JOB DESCRIPTION: %s

Candidate's ACTUAL Experience:
%s

Generate bullet points that:
- Start with strong action verbs
- Use ONLY information from the candidate's experience above
- Quantify achievements where the experience supplies numbers
- Highlight relevant skills from the job description
- Are specific and results-oriented

Return ONLY the bullet points, one per line starting with -`, numBullets, jobDescription, context.String())
}

func parseBullets(output string, limit int) []string {
	bullets := make([]string, 0, limit)

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "-")
		line = strings.TrimPrefix(line, "•")
		line = strings.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		bullets = append(bullets, line)
		if len(bullets) == limit {
			break
		}
	}

	return bullets
}

func NewService(opts ...Option) *Service {
	options := NewOptions(opts...)

	if options.Embedder == nil || options.Store == nil {
		detail := "missing embedder or store for tailor service"
		slog.ErrorContext(options.Context, detail)
		panic(detail)
	}

	if options.QueryEmbedder == nil {
		options.QueryEmbedder = options.Embedder
	}

	return &Service{
		options: options,
	}
}
