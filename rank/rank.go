package rank

import (
	"math"
	"sort"

	"github.com/w-h-a/tailor/store"
)

// CosineSimilarity returns the cosine of the angle between a and b, in
// [-1, 1]. Mismatched lengths and zero vectors yield 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// CosineDistance is 1 - CosineSimilarity, matching the distance the
// postgres <=> operator reports.
func CosineDistance(a, b []float32) float64 {
	return 1.0 - CosineSimilarity(a, b)
}

// TopK orders results by descending score, breaking ties by ascending id
// so a fixed dataset always ranks the same way, and truncates to limit.
// A limit at or beyond len(results) returns the full ordering.
func TopK(results []store.QueryResult, limit int) []store.QueryResult {
	if limit < 1 {
		return nil
	}

	ordered := make([]store.QueryResult, len(results))
	copy(ordered, results)

	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Score != ordered[j].Score {
			return ordered[i].Score > ordered[j].Score
		}
		return ordered[i].Id < ordered[j].Id
	})

	if len(ordered) > limit {
		ordered = ordered[:limit]
	}

	return ordered
}
