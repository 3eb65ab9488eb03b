// Package requesttime provides middleware for request-scoped time. All reads
// of "now" within a single HTTP request agree, which keeps audit timestamps
// and domain timestamps consistent and lets tests inject a fixed time.
package requesttime

import (
	"net/http"
	"time"

	"memberport/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request and
// stores it in the context for consistent time references downstream.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
