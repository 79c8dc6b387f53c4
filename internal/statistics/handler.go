package statistics

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shelfwise/shelfwise/internal/auth"
	"github.com/shelfwise/shelfwise/internal/platform/httpx"
	"github.com/shelfwise/shelfwise/internal/shared"
)

// Handler manages statistics endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	gate    *auth.Gate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate *auth.Gate) *Handler {
	return &Handler{logger: logger, service: service, gate: gate}
}

// MountRoutes registers statistics routes, manager only.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.gate.Require, h.gate.RequireManager)
	r.Get("/dashboard", h.dashboard)
	r.Get("/employee-stats", h.employeeStats)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	dash, err := h.service.Dashboard(r.Context(), principal)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dash, "dashboard statistics")
}

func (h *Handler) employeeStats(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	stats, err := h.service.EmployeeStats(r.Context(), principal)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats, "employee statistics")
}
