package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"qms/internal/transport/shared"
	domainerrors "qms/pkg/domain-errors"
)

// Recovery converts handler panics into a 500 response instead of killing
// the process.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					ctx := r.Context()
					logger.ErrorContext(ctx, "panic in handler",
						"panic", rec,
						"stack", string(debug.Stack()),
						"request_id", GetRequestID(ctx),
					)
					shared.WriteError(w, domainerrors.New(domainerrors.CodeInternal, "internal error"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
