// Copyright (c) 2026 Arcade. All rights reserved.
// Author: platform@arcade.gg

// Command gateway is the entry point for the Arcade edge gateway.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Build the reverse-proxy routing table.
//  4. Start HTTP server with graceful shutdown.
//
// The gateway holds no credentials and no storage: it is a pure router in
// front of the auth and identity services.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/arcadehq/arcade/internal/gateway"
	"github.com/arcadehq/arcade/internal/platform/config"
	"github.com/arcadehq/arcade/internal/platform/constants"
	"github.com/arcadehq/arcade/internal/platform/health"
	"github.com/arcadehq/arcade/internal/platform/httpserver"
)

func main() {
	// ── 1. Logger ─────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log := rawLog.With(
		slog.String("app", constants.AppName),
		slog.String("service", "gateway"),
	)
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.LoadGateway()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(
			slog.String("app", constants.AppName),
			slog.String("service", "gateway"),
		)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Application lifetime context: cancelled on shutdown so background
	// routines (rate limiter cleanup) stop with the server.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// ── 3. Routing Table ──────────────────────────────────────────────────
	liveness, readiness := health.NewHandlers(log)

	router, err := gateway.NewRouter(appCtx, cfg, log, gateway.Probes{
		Liveness:  liveness,
		Readiness: readiness,
	})
	must(log, err, "build routing table")

	log.Info("routing_table_ready",
		slog.String("auth_upstream", cfg.AuthServiceURL),
		slog.String("identity_upstream", cfg.IdentityServiceURL),
	)

	// ── 4. HTTP Server ────────────────────────────────────────────────────
	server := httpserver.New(cfg.ServerPort, router, log)

	// ── 5. Graceful Shutdown ──────────────────────────────────────────────
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

	// Give in-flight proxied requests enough time to complete.
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
