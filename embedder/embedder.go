package embedder

import (
	"context"
	"strings"

	"github.com/w-h-a/tailor/fault"
	"github.com/w-h-a/tailor/store"
)

// Embedder maps text onto fixed-dimension vectors. Implementations are
// safe for concurrent use after construction.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedMany returns one vector per input, in input order.
	EmbedMany(ctx context.Context, texts []string) ([][]float32, error)
}

// CheckText rejects blank input before any network or model call.
func CheckText(texts ...string) error {
	for _, text := range texts {
		if len(strings.TrimSpace(text)) == 0 {
			return fault.New(fault.Validation, "cannot embed empty text")
		}
	}
	return nil
}

// CheckDimension enforces the store dimension on a provider's output. A
// capability returning any other size is a hard integration error, never
// truncated or padded.
func CheckDimension(vector []float32) error {
	if len(vector) != store.Dimension {
		return fault.New(fault.DimensionMismatch, "embedding capability returned %d dimensions, want %d", len(vector), store.Dimension)
	}
	return nil
}
