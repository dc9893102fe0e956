package ingest

import "context"

// Source enumerates and reads raw documents for ingestion.
type Source interface {
	List(ctx context.Context) ([]string, error)
	Read(ctx context.Context, name string) ([]byte, error)
}
