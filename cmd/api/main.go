//	@title			Blob Files API
//	@version		1.0
//	@description	Files API backed by Azure Blob Storage.
//
//	@host		localhost:8080
//	@BasePath	/parse
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Application token from /auth/token. Format: **Bearer {token}**

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/radif/blobfiles/docs/swagger"
	"github.com/radif/blobfiles/internal/auth"
	"github.com/radif/blobfiles/internal/config"
	"github.com/radif/blobfiles/internal/db"
	"github.com/radif/blobfiles/internal/files"
	"github.com/radif/blobfiles/internal/logger"
	appMiddleware "github.com/radif/blobfiles/internal/middleware"
	"github.com/radif/blobfiles/internal/storage"
)

func main() {
	cfg := config.Load()
	log := logger.New("blobfiles", cfg.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx := context.Background()

	store, err := storage.New(cfg.StorageAccount, cfg.StorageContainer, storage.Options{
		AccessKey:    cfg.StorageAccessKey,
		DirectAccess: cfg.StorageDirectAccess,
		Logger:       log,
	})
	if err != nil {
		return err
	}

	pool, err := db.Connect(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL, log); err != nil {
		return err
	}

	// Wire dependencies: repository → service → handler
	loc := storage.LocationConfig{Mount: cfg.LocationMount(), ApplicationID: cfg.ApplicationID}
	fileRepo := files.NewRepository(pool)
	fileSvc := files.NewService(store, fileRepo, loc, log)
	fileHandler := files.NewHandler(fileSvc, log, cfg.MaxUploadBytes)

	authSvc := auth.NewService(cfg)
	authHandler := auth.NewHandler(authSvc, log)

	swagger.SwaggerInfo.BasePath = cfg.MountPath

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger(log))
	r.Use(appMiddleware.Metrics)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Location"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Swagger UI at /swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route(cfg.MountPath, func(r chi.Router) {
		r.Post("/auth/token", authHandler.IssueToken)

		// Proxied reads are public, like direct-access blob URLs.
		r.Get("/files/{appId}/{filename}", fileHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.RequireAuth(cfg.JWTSecret))
			r.Post("/files/{filename}", fileHandler.Upload)
			r.Delete("/files/{filename}", fileHandler.Delete)
			r.Get("/metadata/{filename}", fileHandler.Metadata)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			slog.String("addr", srv.Addr),
			slog.String("env", cfg.AppEnv),
			slog.String("mount", cfg.MountPath),
			slog.Bool("direct_access", store.DirectAccess()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	log.Info("shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info("server stopped")
	return nil
}
