package stores

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/shelfwise/shelfwise/internal/auth"
	"github.com/shelfwise/shelfwise/internal/platform/httpx"
	"github.com/shelfwise/shelfwise/internal/shared"
)

// Handler manages store endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	gate      *auth.Gate
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate *auth.Gate) *Handler {
	return &Handler{logger: logger, service: service, gate: gate, validator: validator.New()}
}

// MountRoutes registers store routes. The availability check is public so
// the registration form can probe names before an account exists.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/check-name", h.checkName)
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require)
		r.Get("/info", h.getInfo)
		r.Group(func(r chi.Router) {
			r.Use(h.gate.RequireManager)
			r.Put("/info", h.updateInfo)
		})
	})
}

func (h *Handler) getInfo(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	store, err := h.service.Info(r.Context(), principal)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, store, "store info")
}

type updateStoreRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=150"`
	Description string `json:"description" validate:"max=500"`
	Address     string `json:"address" validate:"max=300"`
	Phone       string `json:"phone" validate:"max=30"`
}

func (h *Handler) updateInfo(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	var req updateStoreRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, h.logger, shared.Validation("invalid request body"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, h.logger, shared.Validation("validation failed"))
		return
	}
	store, err := h.service.Update(r.Context(), principal, UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		Phone:       req.Phone,
	})
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, store, "store updated")
}

func (h *Handler) checkName(w http.ResponseWriter, r *http.Request) {
	available, err := h.service.CheckName(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"available": available}, "store name availability")
}
