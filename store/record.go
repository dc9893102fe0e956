package store

import (
	"strings"

	"github.com/w-h-a/tailor/fault"
)

type Record struct {
	Id        string    `json:"id"`
	Owner     string    `json:"-"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	DateRange *string   `json:"date_range,omitempty"`
	Skills    []string  `json:"skills"`
	Industry  []string  `json:"industry"`
	Tags      []string  `json:"tags"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"-"`
}

// QueryResult is one ranked search hit. Score is cosine similarity in
// [-1, 1] for the postgres and memory stores; the managed search index
// returns its native relevance score instead. The two scales are not
// comparable.
type QueryResult struct {
	Id      string  `json:"id"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Validate checks the fields a store requires before a write. Embedding
// dimension is included: a record is never persisted without a complete
// embedding.
func (r Record) Validate() error {
	if len(strings.TrimSpace(r.Id)) == 0 {
		return fault.New(fault.Validation, "record id is required")
	}
	if len(strings.TrimSpace(r.Owner)) == 0 {
		return fault.New(fault.Validation, "record owner is required")
	}
	switch r.Type {
	case TypeWork, TypeProject, TypeVolunteering:
	default:
		return fault.New(fault.Validation, "unknown record type %q", r.Type)
	}
	if len(strings.TrimSpace(r.Title)) == 0 {
		return fault.New(fault.Validation, "record title is required")
	}
	if len(strings.TrimSpace(r.Content)) == 0 {
		return fault.New(fault.Validation, "record content is required")
	}
	if len(r.Embedding) != Dimension {
		return fault.New(fault.DimensionMismatch, "record %s has embedding of %d dimensions, want %d", r.Id, len(r.Embedding), Dimension)
	}
	return nil
}
