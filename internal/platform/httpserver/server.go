// Copyright (c) 2026 Arcade. All rights reserved.
// Author: platform@arcade.gg

/*
Package httpserver wraps [http.Server] with the platform's standard timeouts
and lifecycle.

Architecture:

  - Each deployable service (gateway, auth, identity) builds its own router
    and hands it to [New]; this package owns only the server lifecycle.
  - Only this package and the cmd/ entry points are allowed to import
    net/http server primitives.
*/
package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/arcadehq/arcade/internal/platform/constants"
)

// Server wraps the [http.Server] for a single service.
//
// It is constructed once in a cmd/ main with the fully wired handler.
type Server struct {
	httpServer *http.Server
	log        *slog.Logger
}

// New constructs a [Server] listening on the given port with the platform's
// standard read/write/idle timeouts.
func New(port string, handler http.Handler, log *slog.Logger) *Server {
	return &Server{
		log: log,
		httpServer: &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
