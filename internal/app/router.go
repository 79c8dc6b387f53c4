package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/shelfwise/shelfwise/internal/announcements"
	"github.com/shelfwise/shelfwise/internal/auth"
	"github.com/shelfwise/shelfwise/internal/departments"
	"github.com/shelfwise/shelfwise/internal/observability"
	"github.com/shelfwise/shelfwise/internal/photos"
	"github.com/shelfwise/shelfwise/internal/statistics"
	"github.com/shelfwise/shelfwise/internal/stores"
	"github.com/shelfwise/shelfwise/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger              *slog.Logger
	Config              *Config
	AuthHandler         *auth.Handler
	UsersHandler        *users.Handler
	StoresHandler       *stores.Handler
	DepartmentsHandler  *departments.Handler
	AnnouncementHandler *announcements.Handler
	PhotosHandler       *photos.Handler
	StatisticsHandler   *statistics.Handler
	Metrics             *observability.Metrics
}

// NewRouter constructs the chi.Router with Shelfwise defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	// Uploaded shelf photos are served as static files.
	fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(params.Config.UploadDir)))
	r.Get("/uploads/*", fileServer.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)
		if params.UsersHandler != nil {
			r.Route("/user", params.UsersHandler.MountRoutes)
		}
		if params.StoresHandler != nil {
			r.Route("/store", params.StoresHandler.MountRoutes)
		}
		if params.DepartmentsHandler != nil {
			r.Route("/department", params.DepartmentsHandler.MountRoutes)
		}
		if params.AnnouncementHandler != nil {
			r.Route("/announcement", params.AnnouncementHandler.MountRoutes)
		}
		if params.PhotosHandler != nil {
			r.Route("/photo", params.PhotosHandler.MountRoutes)
		}
		if params.StatisticsHandler != nil {
			r.Route("/statistics", params.StatisticsHandler.MountRoutes)
		}
	})

	return r
}
