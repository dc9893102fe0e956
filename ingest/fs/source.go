package fs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/w-h-a/tailor/ingest"
)

// fsSource lists the regular files of a single directory.
type fsSource struct {
	dir string
}

func (s *fsSource) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}

	return names, nil
}

func (s *fsSource) Read(ctx context.Context, name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.dir, name))
}

func NewSource(dir string) ingest.Source {
	return &fsSource{
		dir: dir,
	}
}
