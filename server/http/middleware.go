package http

import (
	"context"
	"net/http"
	"strings"
)

type ownerKey struct{}

// ownerMiddleware extracts the owning principal from the bearer token.
// Token verification is the deployment's concern; the core only needs a
// stable owner identity to scope every operation.
func ownerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		owner := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		if len(owner) == 0 || owner == header {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "missing bearer credentials"})
			return
		}

		ctx := context.WithValue(r.Context(), ownerKey{}, owner)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ownerFrom(ctx context.Context) string {
	owner, _ := ctx.Value(ownerKey{}).(string)
	return owner
}
