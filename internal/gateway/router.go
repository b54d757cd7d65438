// Copyright (c) 2026 Arcade. All rights reserved.
// Author: platform@arcade.gg

/*
Package gateway implements the edge reverse proxy that fronts the Arcade
services.

# Architecture

The gateway is a pure router: it maps path prefixes to upstream services and
forwards requests byte-for-byte. It performs NO authentication itself —
verifying tokens and enforcing roles is the job of the services behind it, so
a request that bypasses the gateway hits exactly the same gates.

Routing table:

  - /auth/*  → authentication service (login, logout, refresh)
  - /users/* → identity service (accounts, profiles)

Anything else is a 404. Unreachable or timed-out upstreams are reported as a
502 in the standard error envelope, never as a hung connection.
*/
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/arcadehq/arcade/internal/platform/apperr"
	"github.com/arcadehq/arcade/internal/platform/config"
	"github.com/arcadehq/arcade/internal/platform/middleware"
	"github.com/arcadehq/arcade/internal/platform/respond"
)

// Upstream describes one proxied backend service.
type Upstream struct {
	// Name identifies the service in logs and 502 envelopes ("auth", "identity").
	Name string

	// Prefix is the path prefix routed to this upstream. The prefix is NOT
	// stripped: upstreams mount their routes under the same prefix.
	Prefix string

	// Target is the upstream base URL (scheme + host, no path).
	Target *url.URL
}

// Router is the gateway's HTTP handler: a chi mux whose routes are reverse
// proxies instead of local handlers.
type Router struct {
	mux *chi.Mux
}

// Probes holds the gateway's own health endpoints. They are answered locally,
// never proxied, so orchestrators probe the gateway process itself.
type Probes struct {
	Liveness  http.HandlerFunc
	Readiness http.HandlerFunc
}

// NewRouter builds the middleware chain and routing table from the gateway
// configuration.
//
// # Parameters
//   - ctx: application lifetime context, bounds the rate limiter's cleanup.
//
// # Returns
//   - A ready [Router] mapping /auth/* and /users/* to their upstreams.
//   - An error if either upstream URL fails to parse.
func NewRouter(ctx context.Context, cfg *config.Gateway, log *slog.Logger, probes Probes) (*Router, error) {
	authTarget, err := url.Parse(cfg.AuthServiceURL)
	if err != nil {
		return nil, fmt.Errorf("gateway: invalid auth service url: %w", err)
	}

	identityTarget, err := url.Parse(cfg.IdentityServiceURL)
	if err != nil {
		return nil, fmt.Errorf("gateway: invalid identity service url: %w", err)
	}

	upstreams := []Upstream{
		{Name: "auth", Prefix: "/auth", Target: authTarget},
		{Name: "identity", Prefix: "/users", Target: identityTarget},
	}

	mux := chi.NewRouter()

	// Global middleware applied in order of execution. No authentication
	// gate here: the services behind the gateway enforce their own.
	mux.Use(middleware.RequestID())
	mux.Use(middleware.StructuredLogger(log))
	mux.Use(middleware.RateLimit(ctx))
	mux.Use(middleware.PanicRecovery(log))
	mux.Use(middleware.CORS(cfg))

	mux.Get("/health", probes.Liveness)
	mux.Get("/ready", probes.Readiness)

	for _, upstream := range upstreams {
		proxy := newProxy(upstream, cfg.ProxyTimeout, log)
		mux.Handle(upstream.Prefix, proxy)
		mux.Handle(upstream.Prefix+"/*", proxy)
	}

	// No catch-all forwarding: an unknown prefix is the gateway's own 404,
	// not a question for any upstream.
	mux.NotFound(func(writer http.ResponseWriter, request *http.Request) {
		respond.Error(writer, request, apperr.NotFound("Route"))
	})

	return &Router{mux: mux}, nil
}

// ServeHTTP implements [http.Handler].
func (router *Router) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	router.mux.ServeHTTP(writer, request)
}

// newProxy builds the reverse proxy handler for a single upstream.
//
// Each proxied round trip runs under its own deadline so one slow upstream
// cannot pin gateway connections indefinitely.
func newProxy(upstream Upstream, timeout time.Duration, log *slog.Logger) http.Handler {
	proxy := &httputil.ReverseProxy{
		Rewrite: func(request *httputil.ProxyRequest) {
			// Target carries no base path, so the request path (prefix
			// included) passes through unchanged.
			request.SetURL(upstream.Target)
			request.SetXForwarded()
		},
		ErrorHandler: func(writer http.ResponseWriter, request *http.Request, err error) {
			log.ErrorContext(request.Context(), "gateway_upstream_failed",
				slog.String("upstream", upstream.Name),
				slog.String("path", request.URL.Path),
				slog.Any("error", err),
			)
			respond.Error(writer, request, apperr.UpstreamUnavailable(upstream.Name, err))
		},
		ErrorLog: slog.NewLogLogger(log.Handler(), slog.LevelError),
	}

	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx, cancel := context.WithTimeout(request.Context(), timeout)
		defer cancel()

		proxy.ServeHTTP(writer, request.WithContext(ctx))
	})
}
