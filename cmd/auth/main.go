// Copyright (c) 2026 Arcade. All rights reserved.
// Author: platform@arcade.gg

// Command auth is the entry point for the Arcade authentication service.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to Redis (login attempt throttling).
//  4. Construct the token codec and identity client.
//  5. Wire HTTP handlers.
//  6. Start HTTP server with graceful shutdown.
//
// The service owns no user storage: credentials come from the identity
// service, sessions exist only as signed tokens. No business logic lives
// here. All wiring is explicit constructor injection.
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

	"github.com/arcadehq/arcade/internal/auth"
	"github.com/arcadehq/arcade/internal/identity"
	"github.com/arcadehq/arcade/internal/platform/config"
	"github.com/arcadehq/arcade/internal/platform/constants"
	"github.com/arcadehq/arcade/internal/platform/health"
	"github.com/arcadehq/arcade/internal/platform/httpserver"
	"github.com/arcadehq/arcade/internal/platform/middleware"
	redisstore "github.com/arcadehq/arcade/internal/platform/redis"
	"github.com/arcadehq/arcade/internal/platform/sec"
	"github.com/arcadehq/arcade/internal/session"
)

func main() {
	// ── 1. Logger ─────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log := rawLog.With(
		slog.String("app", constants.AppName),
		slog.String("service", "auth"),
	)
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.LoadAuth()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(
			slog.String("app", constants.AppName),
			slog.String("service", "auth"),
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

	// ── 3. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 4. Token Codec & Identity Client ──────────────────────────────────
	codec, err := sec.NewCodec(sec.CodecConfig{
		AccessSecret:  cfg.AccessTokenSecret,
		RefreshSecret: cfg.RefreshTokenSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
		Issuer:        constants.AuthIssuer,
	})
	must(log, err, "initialize token codec")

	identityClient := identity.NewClient(cfg.IdentityServiceURL, cfg.IdentityTimeout, log)

	// ── 5. Domain Wiring ──────────────────────────────────────────────────
	limiter := auth.NewRedisAttemptLimiter(rdb, log)
	authService := auth.NewService(codec, identityClient, identityClient, limiter)
	transport := session.NewTransport(cfg.IsProduction(), cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	authHandler := auth.NewHandler(authService, transport)

	// ── 6. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := health.NewHandlers(log, health.Check{
		Name: "redis",
		Probe: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	})

	// ── 7. HTTP Router ────────────────────────────────────────────────────
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
	router.Mount("/auth", authHandler.Routes())

	server := httpserver.New(cfg.ServerPort, router, log)

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
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
