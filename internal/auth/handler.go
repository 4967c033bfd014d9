// Package auth exposes login and logout. Login validates credentials against
// the primary store and issues the signed bearer token; logout revokes the
// token's ID until its natural expiry.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"

	"qms/internal/audit"
	"qms/internal/auth/device"
	"qms/internal/identity"
	"qms/internal/token"
	"qms/internal/transport/shared"
	"qms/internal/users"
	domainerrors "qms/pkg/domain-errors"
)

// Revoker is the slice of the revocation store logout needs. Nil disables
// server-side revocation (tokens then expire naturally).
type Revoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
}

type Handler struct {
	users    *users.Service
	tokens   *token.Service
	revoker  Revoker
	recorder *audit.Recorder
	logger   *slog.Logger
	tokenTTL time.Duration
}

func NewHandler(
	users *users.Service,
	tokens *token.Service,
	revoker Revoker,
	recorder *audit.Recorder,
	logger *slog.Logger,
	tokenTTL time.Duration,
) *Handler {
	return &Handler{
		users:    users,
		tokens:   tokens,
		revoker:  revoker,
		recorder: recorder,
		logger:   logger,
		tokenTTL: tokenTTL,
	}
}

// Register mounts the public auth routes. Logout is registered separately by
// the central router behind RequireAuth.
func (h *Handler) Register(r chi.Router) {
	r.Post("/login", h.handleLogin)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string     `json:"token"`
	User  users.User `json:"user"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, domainerrors.New(domainerrors.CodeValidation, "invalid request body"))
		return
	}
	if !govalidator.IsEmail(req.Email) || req.Password == "" {
		shared.WriteError(w, domainerrors.New(domainerrors.CodeValidation, "email and password are required"))
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.WarnContext(r.Context(), "login failed", "email", req.Email, "error", err)
		shared.WriteError(w, err)
		return
	}

	raw, err := h.tokens.Issue(user.Identity(), h.tokenTTL)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "token issue failed", "error", err)
		shared.WriteError(w, domainerrors.Wrap(domainerrors.CodeInternal, "failed to issue token", err))
		return
	}

	h.recorder.RecordAsync(r.Context(), user.Identity(), audit.ActionLogin, audit.ModuleAuth,
		fmt.Sprintf("login from %s", device.ParseUserAgent(r.Header.Get("User-Agent"))))
	shared.WriteJSON(w, http.StatusOK, loginResponse{Token: raw, User: *user})
}

// HandleLogout revokes the presented token. Mounted behind RequireAuth, so
// the credential has already been verified once; it is re-parsed here for
// its JTI and expiry.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity.FromContext(r.Context())
	if !ok {
		shared.WriteError(w, domainerrors.New(domainerrors.CodePrecondition, "logout ran before authentication"))
		return
	}

	if h.revoker != nil {
		raw, _ := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		verified, err := h.tokens.Verify(raw)
		if err == nil && verified.JTI != "" {
			ttl := time.Until(verified.ExpiresAt)
			if err := h.revoker.Revoke(r.Context(), verified.JTI, ttl); err != nil {
				h.logger.ErrorContext(r.Context(), "token revocation failed", "error", err)
				shared.WriteError(w, domainerrors.Wrap(domainerrors.CodeInternal, "failed to revoke token", err))
				return
			}
		}
	}

	h.recorder.RecordAsync(r.Context(), ident, audit.ActionLogout, audit.ModuleAuth, "logout")
	w.WriteHeader(http.StatusNoContent)
}
