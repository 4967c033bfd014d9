package plantaudits

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
	"qms/internal/uploads"
	domainerrors "qms/pkg/domain-errors"
)

// Handler wires the quality-audit endpoints.
type Handler struct {
	service  *Service
	saver    *uploads.Saver
	recorder *audit.Recorder
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewHandler(service *Service, saver *uploads.Saver, recorder *audit.Recorder, m *metrics.Metrics, logger *slog.Logger) *Handler {
	return &Handler{service: service, saver: saver, recorder: recorder, metrics: m, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/{id}", h.handleGet)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.FromContext(r.Context())
	if !ok {
		shared.WriteError(w, domainerrors.New(domainerrors.CodePrecondition, "missing identity"))
		return
	}
	audits, err := h.service.List(r.Context(), actor)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list audits failed", "error", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"audits": audits})
}

// handleCreate accepts either a JSON body or multipart/form-data with a
// "payload" JSON field plus "files" attachments.
func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.FromContext(r.Context())
	if !ok {
		shared.WriteError(w, domainerrors.New(domainerrors.CodePrecondition, "missing identity"))
		return
	}

	req, files, err := h.decodeCreate(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	created, err := h.service.Create(r.Context(), actor, req, files)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "create audit failed", "error", err)
		shared.WriteError(w, err)
		return
	}

	h.recorder.RecordAsync(r.Context(), actor, audit.ActionCreate, audit.ModuleAudits,
		fmt.Sprintf("created audit %d (%s)", created.ID, created.Title))
	if h.metrics != nil {
		h.metrics.FormsCreated.WithLabelValues(audit.ModuleAudits).Inc()
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

func (h *Handler) decodeCreate(r *http.Request) (CreateRequest, []uploads.FileDescriptor, error) {
	var req CreateRequest

	ct := r.Header.Get("Content-Type")
	if len(ct) >= 19 && ct[:19] == "multipart/form-data" {
		files, err := h.saver.Parse(r, "files")
		if err != nil {
			return req, nil, domainerrors.Wrap(domainerrors.CodeValidation, "invalid multipart body", err)
		}
		payload := r.FormValue("payload")
		if payload == "" {
			return req, nil, domainerrors.New(domainerrors.CodeValidation, "payload field is required")
		}
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return req, nil, domainerrors.New(domainerrors.CodeValidation, "invalid payload JSON")
		}
		return req, files, nil
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, nil, domainerrors.New(domainerrors.CodeValidation, "invalid request body")
	}
	return req, []uploads.FileDescriptor{}, nil
}
