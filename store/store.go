package store

import "context"

// Dimension is the fixed length of every embedding handled by this system.
// The relational schema and the search index are both declared with it.
const Dimension = 384

const (
	TypeWork         = "work"
	TypeProject      = "project"
	TypeVolunteering = "volunteering"
)

// VectorStore persists experience records with their embeddings and ranks
// them by similarity to a query vector. Implementations must scope every
// read, update, and delete by owner.
type VectorStore interface {
	Upsert(ctx context.Context, record Record) error
	UpsertMany(ctx context.Context, records []Record) error
	GetAll(ctx context.Context, owner string) ([]Record, error)
	Update(ctx context.Context, id string, owner string, record Record) error
	Delete(ctx context.Context, id string, owner string) error
	Search(ctx context.Context, vector []float32, limit int) ([]QueryResult, error)
	Close() error
}
