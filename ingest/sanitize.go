package ingest

import "regexp"

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_=-]`)

// SanitizeID replaces every character outside [A-Za-z0-9_=-] with an
// underscore so the result is a store-safe key. Idempotent. Distinct raw
// names can sanitize to the same id; the pipeline rejects such collisions
// rather than silently overwriting.
func SanitizeID(s string) string {
	return unsafeChars.ReplaceAllString(s, "_")
}
