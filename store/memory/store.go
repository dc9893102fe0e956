package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/w-h-a/tailor/fault"
	"github.com/w-h-a/tailor/rank"
	"github.com/w-h-a/tailor/store"
)

// memoryStore is the in-process reference implementation of the
// VectorStore contract. It ranks with exact cosine similarity and is the
// store the tests run against.
type memoryStore struct {
	options store.Options
	records map[string]store.Record
	mtx     sync.RWMutex
}

func (s *memoryStore) Upsert(ctx context.Context, record store.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.put(record)
}

func (s *memoryStore) UpsertMany(ctx context.Context, records []store.Record) error {
	for _, record := range records {
		if err := record.Validate(); err != nil {
			return err
		}
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	// validate-first keeps the batch all-or-nothing
	for _, record := range records {
		if existing, exists := s.records[record.Id]; exists && existing.Owner != record.Owner {
			return fault.New(fault.Conflict, "record %s belongs to another owner", record.Id)
		}
	}

	for _, record := range records {
		if err := s.put(record); err != nil {
			return err
		}
	}

	return nil
}

func (s *memoryStore) put(record store.Record) error {
	if existing, exists := s.records[record.Id]; exists && existing.Owner != record.Owner {
		return fault.New(fault.Conflict, "record %s belongs to another owner", record.Id)
	}

	cpy := make([]float32, len(record.Embedding))
	copy(cpy, record.Embedding)
	record.Embedding = cpy

	s.records[record.Id] = record

	return nil
}

func (s *memoryStore) GetAll(ctx context.Context, owner string) ([]store.Record, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	records := make([]store.Record, 0)

	for _, rec := range s.records {
		if rec.Owner != owner {
			continue
		}
		records = append(records, rec)
	}

	// date_range descending, records without one last, id as tie-break
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i].DateRange, records[j].DateRange
		switch {
		case a == nil && b == nil:
			return records[i].Id < records[j].Id
		case a == nil:
			return false
		case b == nil:
			return true
		case *a != *b:
			return *a > *b
		default:
			return records[i].Id < records[j].Id
		}
	})

	return records, nil
}

func (s *memoryStore) Update(ctx context.Context, id string, owner string, record store.Record) error {
	record.Id = id
	record.Owner = owner

	if err := record.Validate(); err != nil {
		return err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, exists := s.records[id]
	if !exists || existing.Owner != owner {
		return fault.New(fault.NotFound, "no record %s for owner %s", id, owner)
	}

	return s.put(record)
}

func (s *memoryStore) Delete(ctx context.Context, id string, owner string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, exists := s.records[id]
	if !exists || existing.Owner != owner {
		return fault.New(fault.NotFound, "no record %s for owner %s", id, owner)
	}

	delete(s.records, id)

	return nil
}

func (s *memoryStore) Search(ctx context.Context, vector []float32, limit int) ([]store.QueryResult, error) {
	if len(vector) != store.Dimension {
		return nil, fault.New(fault.DimensionMismatch, "query vector has %d dimensions, want %d", len(vector), store.Dimension)
	}
	if limit < 1 {
		return nil, nil
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	candidates := make([]store.QueryResult, 0, len(s.records))

	for _, rec := range s.records {
		candidates = append(candidates, store.QueryResult{
			Id:      rec.Id,
			Content: rec.Content,
			Score:   rank.CosineSimilarity(vector, rec.Embedding),
		})
	}

	return rank.TopK(candidates, limit), nil
}

func (s *memoryStore) Close() error {
	return nil
}

func NewStore(opts ...store.Option) store.VectorStore {
	options := store.NewOptions(opts...)

	return &memoryStore{
		options: options,
		records: map[string]store.Record{},
		mtx:     sync.RWMutex{},
	}
}
