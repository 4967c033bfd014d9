// Package transport assembles the HTTP surface: middleware chain, route
// groups, and the static upload mount.
package transport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"qms/internal/actions"
	"qms/internal/audit"
	"qms/internal/auth"
	"qms/internal/employees"
	"qms/internal/identity"
	"qms/internal/plantaudits"
	"qms/internal/platform/metrics"
	"qms/internal/platform/middleware"
	"qms/internal/recalls"
	"qms/internal/suppliers"
	"qms/internal/transport/shared"
	"qms/internal/uploads"
	"qms/internal/users"
	"qms/internal/weightcontrol"
)

// Handlers collects every mounted handler so the router constructor stays
// flat.
type Handlers struct {
	Auth          *auth.Handler
	Users         *users.Handler
	AuditLog      *audit.Handler
	PlantAudits   *plantaudits.Handler
	Actions       *actions.Handler
	WeightControl *weightcontrol.Handler
	Suppliers     *suppliers.Handler
	Recalls       *recalls.Handler
	Employees     *employees.Handler
}

// NewRouter builds the full route tree. Login, health, and metrics are
// public; everything under /api besides those sits behind the auth gate,
// with per-group permission checks on top.
func NewRouter(
	h Handlers,
	verifier middleware.TokenVerifier,
	revocations middleware.RevocationChecker,
	saver *uploads.Saver,
	m *metrics.Metrics,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Latency(m))
	r.Use(middleware.Trace)

	r.Get("/api/health", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/auth", func(r chi.Router) {
		h.Auth.Register(r)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(verifier, revocations, logger))
			r.Post("/logout", h.Auth.HandleLogout)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(verifier, revocations, logger))

		r.Route("/api/users", func(r chi.Router) {
			r.Use(middleware.RequirePermission(identity.CanManageUsers, logger))
			h.Users.Register(r)
		})
		r.Route("/api/audit-log", func(r chi.Router) {
			r.Use(middleware.RequirePermission(identity.CanManageUsers, logger))
			h.AuditLog.Register(r)
		})
		r.Route("/api/employees", func(r chi.Router) {
			r.Use(middleware.RequirePermission(identity.CanManageUsers, logger))
			h.Employees.Register(r)
		})

		r.Route("/api/suppliers", func(r chi.Router) {
			r.Use(middleware.RequirePermission(identity.CanManageQuality, logger))
			h.Suppliers.Register(r)
		})

		r.Route("/api/audits", func(r chi.Router) {
			r.Use(middleware.RequirePermission(identity.CanSubmitForms, logger))
			h.PlantAudits.Register(r)
		})
		r.Route("/api/actions", func(r chi.Router) {
			r.Use(middleware.RequirePermission(identity.CanSubmitForms, logger))
			h.Actions.Register(r)
		})
		r.Route("/api/weightcontrols", func(r chi.Router) {
			r.Use(middleware.RequirePermission(identity.CanSubmitForms, logger))
			h.WeightControl.Register(r)
		})
		r.Route("/api/recalls", func(r chi.Router) {
			r.Use(middleware.RequirePermission(identity.CanSubmitForms, logger))
			h.Recalls.Register(r)
		})

		r.Handle("/uploads/*", http.StripPrefix("/uploads/",
			http.FileServer(http.Dir(saver.Dir()))))
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
