package users

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"qms/internal/audit"
	"qms/internal/identity"
	"qms/internal/transport/shared"
	domainerrors "qms/pkg/domain-errors"
)

// Handler wires the account admin endpoints. The central router gates the
// whole group behind CanManageUsers.
type Handler struct {
	service  *Service
	recorder *audit.Recorder
	logger   *slog.Logger
}

func NewHandler(service *Service, recorder *audit.Recorder, logger *slog.Logger) *Handler {
	return &Handler{service: service, recorder: recorder, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/{id}", h.handleGet)
	r.Put("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDeactivate)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		h.logError(r, "list users", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, domainerrors.New(domainerrors.CodeValidation, "invalid request body"))
		return
	}

	user, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logError(r, "create user", err)
		shared.WriteError(w, err)
		return
	}

	if actor, ok := identity.FromContext(r.Context()); ok {
		h.recorder.RecordAsync(r.Context(), actor, audit.ActionCreate, audit.ModuleUsers,
			fmt.Sprintf("created user %d (%s)", user.ID, user.Email))
	}
	shared.WriteJSON(w, http.StatusCreated, user)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, domainerrors.New(domainerrors.CodeValidation, "invalid request body"))
		return
	}

	user, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.logError(r, "update user", err)
		shared.WriteError(w, err)
		return
	}

	if actor, ok := identity.FromContext(r.Context()); ok {
		h.recorder.RecordAsync(r.Context(), actor, audit.ActionUpdate, audit.ModuleUsers,
			fmt.Sprintf("updated user %d", user.ID))
	}
	shared.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Deactivate(r.Context(), id); err != nil {
		h.logError(r, "deactivate user", err)
		shared.WriteError(w, err)
		return
	}

	if actor, ok := identity.FromContext(r.Context()); ok {
		h.recorder.RecordAsync(r.Context(), actor, audit.ActionDelete, audit.ModuleUsers,
			fmt.Sprintf("deactivated user %d", id))
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) logError(r *http.Request, op string, err error) {
	h.logger.ErrorContext(r.Context(), "users handler: "+op, "error", err)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		shared.WriteError(w, domainerrors.New(domainerrors.CodeValidation, "invalid id"))
		return 0, false
	}
	return id, true
}
