package suppliers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

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
	r.Get("/", h.handleListEvaluations)
	r.Post("/", h.handleCreateEvaluation)
	r.Get("/master", h.handleListSuppliers)
}

func (h *Handler) handleListEvaluations(w http.ResponseWriter, r *http.Request) {
	evals, err := h.service.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list evaluations failed", "error", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"evaluations": evals})
}

func (h *Handler) handleCreateEvaluation(w http.ResponseWriter, r *http.Request) {
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
		h.logger.ErrorContext(r.Context(), "create evaluation failed", "error", err)
		shared.WriteError(w, err)
		return
	}

	h.recorder.RecordAsync(r.Context(), actor, audit.ActionCreate, audit.ModuleSuppliers,
		fmt.Sprintf("evaluated supplier %s for %s", created.SupplierCode, created.Period))
	if h.metrics != nil {
		h.metrics.FormsCreated.WithLabelValues(audit.ModuleSuppliers).Inc()
	}
	shared.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleListSuppliers(w http.ResponseWriter, r *http.Request) {
	sups, err := h.service.ListSuppliers(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list suppliers failed", "error", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"suppliers": sups})
}
