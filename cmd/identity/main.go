// Copyright (c) 2026 Arcade. All rights reserved.
// Author: platform@arcade.gg

// Command identity is the entry point for the Arcade identity service.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Run database migrations (idempotent).
//  5. Construct the token codec for the authentication gate.
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// The identity service is the system of record for user accounts. Its
// protected routes run the same authentication and authorization gates as
// every other service; principals are resolved directly from storage rather
// than via an HTTP round trip to itself.
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
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/arcadehq/arcade/internal/platform/config"
	"github.com/arcadehq/arcade/internal/platform/constants"
	"github.com/arcadehq/arcade/internal/platform/health"
	"github.com/arcadehq/arcade/internal/platform/httpserver"
	"github.com/arcadehq/arcade/internal/platform/middleware"
	"github.com/arcadehq/arcade/internal/platform/migration"
	pgstore "github.com/arcadehq/arcade/internal/platform/postgres"
	"github.com/arcadehq/arcade/internal/platform/sec"
	"github.com/arcadehq/arcade/internal/users"
)

func main() {
	// ── 1. Logger ─────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log := rawLog.With(
		slog.String("app", constants.AppName),
		slog.String("service", "identity"),
	)
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.LoadIdentity()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(
			slog.String("app", constants.AppName),
			slog.String("service", "identity"),
		)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 5. Token Codec ────────────────────────────────────────────────────
	codec, err := sec.NewCodec(sec.CodecConfig{
		AccessSecret:  cfg.AccessTokenSecret,
		RefreshSecret: cfg.RefreshTokenSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
		Issuer:        constants.AuthIssuer,
	})
	must(log, err, "initialize token codec")

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	userRepository := users.NewPostgresRepository(pool)
	userService := users.NewService(userRepository)
	resolver := users.NewLocalResolver(userService)
	userHandler := users.NewHandler(userService)

	authenticate := middleware.Authenticate(codec, resolver)

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := health.NewHandlers(log, health.Check{
		Name: "postgres",
		Probe: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
	})

	// ── 8. HTTP Router ────────────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger(log))
	router.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	router.Use(middleware.RateLimit(appCtx))
	router.Use(middleware.PanicRecovery(log))
	router.Use(middleware.CORS(cfg))
	router.Use(chimw.CleanPath)

	router.Get("/health", liveness)
	router.Get("/ready", readiness)

	// Mounted under the same prefix the gateway routes on: the gateway does
	// not strip paths.
	router.Mount("/users", userHandler.Routes(authenticate))

	// Service-to-service lookups: reachable only on the trusted network,
	// never routed by the gateway.
	router.Mount("/internal", userHandler.InternalRoutes())

	server := httpserver.New(cfg.ServerPort, router, log)

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
