package employees

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"qms/internal/transport/shared"
	domainerrors "qms/pkg/domain-errors"
	"qms/pkg/platform/sentinel"
)

type Handler struct {
	store  Store
	logger *slog.Logger
}

func NewHandler(store Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/{number}", h.handleGet)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	emps, err := h.store.List(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list employees failed", "error", err)
		shared.WriteError(w, domainerrors.Wrap(domainerrors.CodePersistence, "failed to list employees", err))
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"employees": emps})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	emp, err := h.store.FindByNumber(r.Context(), number)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			shared.WriteError(w, domainerrors.New(domainerrors.CodeNotFound, "employee not found"))
			return
		}
		h.logger.ErrorContext(r.Context(), "find employee failed", "error", err, "number", number)
		shared.WriteError(w, domainerrors.Wrap(domainerrors.CodePersistence, "failed to load employee", err))
		return
	}
	shared.WriteJSON(w, http.StatusOK, emp)
}
