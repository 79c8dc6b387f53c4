package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/shelfwise/shelfwise/internal/announcements"
	"github.com/shelfwise/shelfwise/internal/app"
	"github.com/shelfwise/shelfwise/internal/auth"
	"github.com/shelfwise/shelfwise/internal/departments"
	"github.com/shelfwise/shelfwise/internal/observability"
	"github.com/shelfwise/shelfwise/internal/photos"
	"github.com/shelfwise/shelfwise/internal/platform/cache"
	"github.com/shelfwise/shelfwise/internal/platform/db"
	"github.com/shelfwise/shelfwise/internal/statistics"
	"github.com/shelfwise/shelfwise/internal/stores"
	"github.com/shelfwise/shelfwise/internal/users"
	"github.com/shelfwise/shelfwise/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	secret := []byte(cfg.JWTSecret)
	authRepo := auth.NewRepository(pool)
	issuer := auth.NewIssuer(secret, cfg.JWTTTL)
	verifier := auth.NewVerifier(secret, authRepo)
	gate := auth.NewGate(verifier, logger)
	authService := auth.NewService(authRepo, issuer)
	authHandler := auth.NewHandler(logger, authService, gate)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService, gate)

	storesRepo := stores.NewRepository(pool)
	storesService := stores.NewService(storesRepo)
	storesHandler := stores.NewHandler(logger, storesService, gate)

	departmentsRepo := departments.NewRepository(pool)
	departmentsService := departments.NewService(departmentsRepo)
	departmentsHandler := departments.NewHandler(logger, departmentsService, gate)

	announcementRepo := announcements.NewRepository(pool)
	announcementCache := announcements.NewCache(redisClient, 10*time.Minute)
	announcementService := announcements.NewService(announcementRepo, announcementCache, logger)
	announcementHandler := announcements.NewHandler(logger, announcementService, gate)

	photosRepo := photos.NewRepository(pool)
	photosService := photos.NewService(logger, photosRepo, jobClient, cfg.UploadDir, cfg.MaxUploadBytes)
	photosHandler := photos.NewHandler(logger, photosService, gate, cfg.MaxUploadBytes)

	statsRepo := statistics.NewRepository(pool)
	statsService := statistics.NewService(statsRepo)
	statsHandler := statistics.NewHandler(logger, statsService, gate)

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		AuthHandler:         authHandler,
		UsersHandler:        usersHandler,
		StoresHandler:       storesHandler,
		DepartmentsHandler:  departmentsHandler,
		AnnouncementHandler: announcementHandler,
		PhotosHandler:       photosHandler,
		StatisticsHandler:   statsHandler,
		Metrics:             metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
