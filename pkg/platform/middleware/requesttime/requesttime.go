// Package requesttime pins one "now" per request so every audit entry,
// suspicion window and transfer timestamp in a request agrees.
package requesttime

import (
	"net/http"
	"time"

	"pigate/pkg/requestcontext"
)

// Middleware stores the request start time (UTC) in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
