// Copyright (c) 2026 Arcade. All rights reserved.
// Author: platform@arcade.gg

// Package health contains the health check handlers for liveness and
// readiness probes. All three services expose the same pair of endpoints;
// each wires in its own dependency checkers.
package health

import (
	"log/slog"
	"net/http"

	"github.com/arcadehq/arcade/internal/platform/respond"
)

// Check is a single named dependency probe for the /ready endpoint.
type Check struct {
	// Name identifies the dependency in the readiness report ("postgres",
	// "redis", "identity").
	Name string

	// Probe pings the dependency. A nil error means healthy.
	Probe func() error
}

type handler struct {
	checks []Check
	logger *slog.Logger
}

// NewHandlers creates the /health and /ready http.HandlerFuncs.
//
// # Parameters
//   - checks: dependency probes evaluated by /ready, in report order. A
//     service with no external dependencies passes none and is always ready.
func NewHandlers(logger *slog.Logger, checks ...Check) (liveness, readiness http.HandlerFunc) {
	h := &handler{checks: checks, logger: logger}
	return h.liveness, h.readiness
}

// liveness handles GET /health (liveness probe).
func (h *handler) liveness(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, map[string]string{"status": "ok"})
}

// readiness handles GET /ready (readiness probe).
func (h *handler) readiness(writer http.ResponseWriter, request *http.Request) {
	type checkResult struct {
		Name  string `json:"name"`
		IsOK  bool   `json:"ok"`
		Error string `json:"error,omitempty"`
	}

	results := make([]checkResult, 0, len(h.checks))
	isSystemReady := true

	for _, check := range h.checks {
		result := checkResult{Name: check.Name, IsOK: true}
		if err := check.Probe(); err != nil {
			result.IsOK = false
			result.Error = err.Error()
			isSystemReady = false
			h.logger.Error("readiness_check_failed",
				slog.String("dependency", check.Name),
				slog.Any("error", err),
			)
		}
		results = append(results, result)
	}

	responseStatus := "ready"
	httpStatus := http.StatusOK

	if !isSystemReady {
		responseStatus = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	respond.JSON(writer, httpStatus, map[string]any{
		"status": responseStatus,
		"checks": results,
	})
}
