package testutil

import (
	"log/slog"
	"net/http"

	"qms/internal/identity"
)

// WithIdentity attaches an authenticated identity to the request context,
// simulating what the auth middleware does for authenticated requests.
func WithIdentity(req *http.Request, ident identity.Identity) *http.Request {
	return req.WithContext(identity.WithIdentity(req.Context(), ident))
}

// DiscardLogger returns a logger whose output goes nowhere.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
