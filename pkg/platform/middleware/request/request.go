package request

import (
	"net/http"

	"github.com/google/uuid"

	"memberport/pkg/requestcontext"
)

const headerRequestID = "X-Request-Id"

// RequestID assigns every request a correlation ID, honoring one supplied by
// an upstream proxy, and echoes it back in the response headers.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		w.Header().Set(headerRequestID, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
