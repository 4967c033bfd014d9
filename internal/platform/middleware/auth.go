package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"qms/internal/identity"
	"qms/internal/token"
	"qms/internal/transport/shared"
	domainerrors "qms/pkg/domain-errors"
)

// TokenVerifier is the interface the auth gate needs from the token service.
type TokenVerifier interface {
	Verify(raw string) (*token.Verified, error)
}

// RevocationChecker reports whether a token ID has been revoked. A nil
// checker disables the check.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RequireAuth verifies the bearer credential and attaches the canonical
// identity to the request context. Missing and invalid credentials both
// return 401 with distinct messages for observability.
func RequireAuth(verifier TokenVerifier, revocations RevocationChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			authHeader := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || raw == "" {
				logger.WarnContext(ctx, "unauthenticated request - missing bearer token",
					"request_id", GetRequestID(ctx),
				)
				shared.WriteError(w, domainerrors.New(domainerrors.CodeUnauthenticated, "missing bearer token"))
				return
			}

			verified, err := verifier.Verify(raw)
			if err != nil {
				logger.WarnContext(ctx, "unauthenticated request - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				shared.WriteError(w, domainerrors.New(domainerrors.CodeUnauthenticated, "invalid or expired token"))
				return
			}

			if revocations != nil && verified.JTI != "" {
				revoked, err := revocations.IsRevoked(ctx, verified.JTI)
				if err != nil {
					logger.ErrorContext(ctx, "revocation check failed",
						"error", err,
						"request_id", GetRequestID(ctx),
					)
					shared.WriteError(w, domainerrors.Wrap(domainerrors.CodeInternal, "failed to validate token", err))
					return
				}
				if revoked {
					logger.WarnContext(ctx, "unauthenticated request - token revoked",
						"jti", verified.JTI,
						"request_id", GetRequestID(ctx),
					)
					shared.WriteError(w, domainerrors.New(domainerrors.CodeUnauthenticated, "invalid or expired token"))
					return
				}
			}

			ctx = identity.WithIdentity(ctx, verified.Identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
