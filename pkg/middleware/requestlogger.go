package middleware

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/EcommerceGo/services/review/pkg/logger"
)

// UserIDHeader is set by the gateway with the authenticated caller's id.
const UserIDHeader = "X-User-ID"

// RequestLogger stores a request-scoped logger in the context carrying
// correlation_id, user_id, trace_id and span_id. Mount it after
// RequestLogging and Tracing so those values are already present.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if userID := r.Header.Get(UserIDHeader); userID != "" {
				ctx = logger.WithUserID(ctx, userID)
			}
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
