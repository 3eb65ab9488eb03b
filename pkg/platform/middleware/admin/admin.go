package admin

import (
	"log/slog"
	"net/http"

	"memberport/pkg/requestcontext"
)

// RequireAdmin rejects callers whose authenticated role is not admin. It must
// run after auth.RequireAuth so the role is already in context; a missing
// role fails closed.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if role := requestcontext.Role(ctx); !role.IsAdmin() {
				logger.WarnContext(ctx, "admin route denied",
					"role", string(role),
					"member_id", requestcontext.MemberID(ctx).String(),
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden","error_description":"admin privilege required"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
