package audit

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"qms/internal/transport/shared"
	domainerrors "qms/pkg/domain-errors"
)

// Handler exposes the audit trail to the admin console.
type Handler struct {
	store  Store
	logger *slog.Logger
}

func NewHandler(store Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// Register mounts the audit-log routes. The central router gates the group
// behind RequireAuth + RequirePermission.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	limit := 200
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 1000 {
			shared.WriteError(w, domainerrors.New(domainerrors.CodeValidation, "limit must be 1-1000"))
			return
		}
		limit = n
	}

	entries, err := h.store.List(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list audit entries", "error", err)
		shared.WriteError(w, domainerrors.Wrap(domainerrors.CodePersistence, "failed to list audit entries", err))
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
