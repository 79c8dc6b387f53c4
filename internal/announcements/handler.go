package announcements

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/shelfwise/shelfwise/internal/auth"
	"github.com/shelfwise/shelfwise/internal/platform/httpx"
	"github.com/shelfwise/shelfwise/internal/shared"
)

// Handler manages announcement endpoints.
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

// MountRoutes registers announcement routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.gate.Require)
	r.Get("/", h.list)
	r.Post("/mark-as-read/{id}", h.markRead)
	r.Get("/unread-count", h.unreadCount)
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireManager)
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	anns, err := h.service.List(r.Context(), principal)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, anns, "announcements")
}

type announcementRequest struct {
	Title string `json:"title" validate:"required,min=2,max=200"`
	Body  string `json:"body" validate:"required,max=5000"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	ann, err := h.service.Create(r.Context(), principal, Input{Title: req.Title, Body: req.Body})
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, ann, "announcement created")
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	id, err := h.idParam(r)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	ann, err := h.service.Update(r.Context(), principal, id, Input{Title: req.Title, Body: req.Body})
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ann, "announcement updated")
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	id, err := h.idParam(r)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	if err := h.service.Delete(r.Context(), principal, id); err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, nil, "announcement deleted")
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	id, err := h.idParam(r)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	if err := h.service.MarkRead(r.Context(), principal, id); err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, nil, "announcement marked as read")
}

func (h *Handler) unreadCount(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	count, err := h.service.UnreadCount(r.Context(), principal)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int64{"unreadCount": count}, "unread count")
}

func (h *Handler) idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, shared.Validation("invalid announcement id")
	}
	return id, nil
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (announcementRequest, bool) {
	var req announcementRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, h.logger, shared.Validation("invalid request body"))
		return req, false
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, h.logger, shared.Validation("validation failed"))
		return req, false
	}
	return req, true
}
