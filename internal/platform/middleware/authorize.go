package middleware

import (
	"log/slog"
	"net/http"

	"qms/internal/identity"
	"qms/internal/transport/shared"
	domainerrors "qms/pkg/domain-errors"
)

// RequirePermission gates a route on the authenticated identity's role. It
// must run after RequireAuth; a missing identity is a wiring bug and is
// reported as a 500, not a 401.
func RequirePermission(p identity.Permission, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			ident, ok := identity.FromContext(ctx)
			if !ok {
				logger.ErrorContext(ctx, "authorization check without identity in context",
					"permission", string(p),
					"request_id", GetRequestID(ctx),
				)
				shared.WriteError(w, domainerrors.New(domainerrors.CodePrecondition, "authorization ran before authentication"))
				return
			}

			if !ident.Role.Allows(p) {
				logger.WarnContext(ctx, "forbidden request",
					"permission", string(p),
					"role", string(ident.Role),
					"user_id", ident.ID,
					"request_id", GetRequestID(ctx),
				)
				shared.WriteError(w, domainerrors.
					New(domainerrors.CodeForbidden, "insufficient role").
					WithDetail("role "+string(ident.Role)+" lacks "+string(p)))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
