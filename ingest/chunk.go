package ingest

import "unicode"

// DefaultMaxChars is the chunk character budget.
const DefaultMaxChars = 500

// ChunkText splits text into chunks of at most maxChars characters,
// breaking at the last whitespace at or before the budget and hard-cutting
// when a run has no whitespace. The remainder is always emitted, so
// concatenating the chunks reproduces the input exactly.
func ChunkText(text string, maxChars int) []string {
	if maxChars < 1 {
		maxChars = DefaultMaxChars
	}

	runes := []rune(text)

	var chunks []string

	for len(runes) > maxChars {
		splitAt := -1
		for i := maxChars - 1; i >= 0; i-- {
			if unicode.IsSpace(runes[i]) {
				splitAt = i
				break
			}
		}
		// a split at 0 would make no progress
		if splitAt < 1 {
			splitAt = maxChars
		}

		chunks = append(chunks, string(runes[:splitAt]))
		runes = runes[splitAt:]
	}

	chunks = append(chunks, string(runes))

	return chunks
}
