package photos

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shelfwise/shelfwise/internal/auth"
	"github.com/shelfwise/shelfwise/internal/platform/httpx"
	"github.com/shelfwise/shelfwise/internal/shared"
)

// Handler manages photo endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	gate     *auth.Gate
	maxBytes int64
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate *auth.Gate, maxBytes int64) *Handler {
	return &Handler{logger: logger, service: service, gate: gate, maxBytes: maxBytes}
}

// MountRoutes registers photo routes. Uploads and own listings are open to
// every authenticated account; store-wide listings are manager only.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.gate.Require)
	r.Post("/", h.upload)
	r.Get("/", h.listOwn)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireManager)
		r.Get("/all-employees", h.listStore)
		r.Get("/employee/{id}", h.listEmployee)
	})
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+4096)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		httpx.Error(w, h.logger, shared.Validation("could not parse upload form"))
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		httpx.Error(w, h.logger, shared.Validation("photo file is required"))
		return
	}
	defer func() {
		_ = file.Close()
	}()

	photo, err := h.service.Upload(r.Context(), principal, UploadInput{
		File:        file,
		Header:      header,
		Department:  r.FormValue("departmentName"),
		Description: r.FormValue("description"),
	})
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, photo, "photo uploaded")
}

func (h *Handler) listOwn(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	photos, err := h.service.ListOwn(r.Context(), principal)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, photos, "photos")
}

func (h *Handler) listStore(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	photos, err := h.service.ListStore(r.Context(), principal)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, photos, "store photos")
}

func (h *Handler) listEmployee(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, h.logger, shared.Validation("invalid employee id"))
		return
	}
	photos, err := h.service.ListEmployee(r.Context(), principal, id)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, photos, "employee photos")
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, h.logger, shared.Validation("invalid photo id"))
		return
	}
	photo, err := h.service.Get(r.Context(), principal, id)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, photo, "photo")
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, h.logger, shared.Validation("invalid photo id"))
		return
	}
	if err := h.service.Delete(r.Context(), principal, id); err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, nil, "photo deleted")
}
