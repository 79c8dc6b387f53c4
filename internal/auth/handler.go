package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/shelfwise/shelfwise/internal/platform/httpx"
	"github.com/shelfwise/shelfwise/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	gate      *Gate
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate *Gate) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		gate:      gate,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router. Login and
// registration are the only public endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/register", h.handleRegister)
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require)
		r.Post("/change-password", h.handleChangePassword)
		r.Group(func(r chi.Router) {
			r.Use(h.gate.RequireManager)
			r.Post("/create-employee", h.handleCreateEmployee)
			r.Delete("/employee/{id}", h.handleDeleteEmployee)
		})
	})
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, h.logger, shared.Validation("invalid request body"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, h.logger, shared.Validation("username and password are required"))
		return
	}
	result, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	h.logger.Info("user logged in", slog.String("username", req.Username))
	httpx.JSON(w, http.StatusOK, result, "login successful")
}

type registerRequest struct {
	Username     string `json:"username" validate:"required,min=3,max=64"`
	Password     string `json:"password" validate:"required,min=8"`
	Email        string `json:"email" validate:"required,email"`
	FirstName    string `json:"firstName" validate:"max=100"`
	LastName     string `json:"lastName" validate:"max=100"`
	StoreName    string `json:"storeName" validate:"required,min=2,max=150"`
	StoreAddress string `json:"storeAddress" validate:"max=300"`
	StorePhone   string `json:"storePhone" validate:"max=30"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, h.logger, shared.Validation("invalid request body"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, h.logger, shared.Validation(validationMessage(err)))
		return
	}
	result, err := h.service.RegisterManager(r.Context(), RegisterManagerInput{
		Username:     req.Username,
		Password:     req.Password,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		StoreName:    req.StoreName,
		StoreAddress: req.StoreAddress,
		StorePhone:   req.StorePhone,
	})
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	h.logger.Info("manager registered",
		slog.String("username", req.Username),
		slog.String("store", req.StoreName),
	)
	httpx.JSON(w, http.StatusCreated, result, "manager account and store created")
}

type createEmployeeRequest struct {
	Username   string `json:"username" validate:"required,min=3,max=64"`
	Password   string `json:"password" validate:"required,min=8"`
	Email      string `json:"email" validate:"required,email"`
	FirstName  string `json:"firstName" validate:"max=100"`
	LastName   string `json:"lastName" validate:"max=100"`
	Department string `json:"department" validate:"max=100"`
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	var req createEmployeeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, h.logger, shared.Validation("invalid request body"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, h.logger, shared.Validation(validationMessage(err)))
		return
	}
	user, err := h.service.CreateEmployee(r.Context(), principal, CreateEmployeeInput{
		Username:   req.Username,
		Password:   req.Password,
		Email:      req.Email,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Department: req.Department,
	})
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	h.logger.Info("employee created",
		slog.String("username", req.Username),
		slog.Int64("store_id", principal.StoreID),
	)
	httpx.JSON(w, http.StatusCreated, user, "employee account created")
}

func (h *Handler) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, h.logger, shared.Validation("invalid employee id"))
		return
	}
	if err := h.service.DeleteEmployee(r.Context(), principal, id); err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, nil, "employee deleted")
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	var req changePasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, h.logger, shared.Validation("invalid request body"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, h.logger, shared.Validation(validationMessage(err)))
		return
	}
	if err := h.service.ChangePassword(r.Context(), principal, req.CurrentPassword, req.NewPassword); err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, nil, "password changed")
}

func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return "invalid field: " + fieldErrs[0].Field()
	}
	return "validation failed"
}
