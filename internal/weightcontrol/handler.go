package weightcontrol

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"qms/internal/audit"
	"qms/internal/identity"
	"qms/internal/platform/metrics"
	"qms/internal/transport/shared"
	domainerrors "qms/pkg/domain-errors"
)

type Handler struct {
	service  *Service
	recorder *audit.Recorder
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewHandler(service *Service, recorder *audit.Recorder, m *metrics.Metrics, logger *slog.Logger) *Handler {
	return &Handler{service: service, recorder: recorder, metrics: m, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/{id}", h.handleGet)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list weight controls failed", "error", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.FromContext(r.Context())
	if !ok {
		shared.WriteError(w, domainerrors.New(domainerrors.CodePrecondition, "missing identity"))
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, domainerrors.New(domainerrors.CodeValidation, "invalid request body"))
		return
	}

	created, err := h.service.Create(r.Context(), actor, req)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "create weight control failed", "error", err)
		shared.WriteError(w, err)
		return
	}

	h.recorder.RecordAsync(r.Context(), actor, audit.ActionCreate, audit.ModuleWeightControl,
		fmt.Sprintf("created weight control %d for lot %s (%s)", created.ID, created.Lot, created.Verdict))
	if h.metrics != nil {
		h.metrics.FormsCreated.WithLabelValues(audit.ModuleWeightControl).Inc()
	}
	shared.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		shared.WriteError(w, domainerrors.New(domainerrors.CodeValidation, "invalid id"))
		return
	}
	detail, err := h.service.Get(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, detail)
}
