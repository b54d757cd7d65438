// Copyright (c) 2026 Arcade. All rights reserved.
// Author: platform@arcade.gg

package gateway_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcadehq/arcade/internal/gateway"
	"github.com/arcadehq/arcade/internal/platform/config"
	"github.com/arcadehq/arcade/internal/platform/health"
	"github.com/arcadehq/arcade/internal/platform/respond"
)

// newTestRouter builds a gateway router pointed at the given upstream URLs.
func newTestRouter(t *testing.T, authURL, identityURL string, proxyTimeout time.Duration) *gateway.Router {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	liveness, readiness := health.NewHandlers(log)

	cfg := &config.Gateway{
		Runtime:            config.Runtime{Environment: "development"},
		ServerPort:         "8080",
		AuthServiceURL:     authURL,
		IdentityServiceURL: identityURL,
		ProxyTimeout:       proxyTimeout,
	}

	router, err := gateway.NewRouter(context.Background(), cfg, log, gateway.Probes{
		Liveness:  liveness,
		Readiness: readiness,
	})
	require.NoError(t, err)

	return router
}

// echoUpstream records what it receives and answers with a recognizable body.
func echoUpstream(name string) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(writer).Encode(map[string]string{
			"upstream": name,
			"method":   request.Method,
			"path":     request.URL.Path,
			"body":     readAll(request),
			"xff":      request.Header.Get("X-Forwarded-For"),
		})
	})
}

func readAll(request *http.Request) string {
	body, _ := io.ReadAll(request.Body)
	return string(body)
}

/*
TestRouter_PrefixRouting verifies each prefix reaches its own upstream with
method, full path (prefix NOT stripped), and body intact.
*/
func TestRouter_PrefixRouting(t *testing.T) {
	authServer := httptest.NewServer(echoUpstream("auth"))
	defer authServer.Close()
	identityServer := httptest.NewServer(echoUpstream("identity"))
	defer identityServer.Close()

	router := newTestRouter(t, authServer.URL, identityServer.URL, time.Second)

	tests := []struct {
		name         string
		method       string
		path         string
		body         string
		wantUpstream string
	}{
		{"login_to_auth", http.MethodPost, "/auth/login", `{"identifier":"a@b.c"}`, "auth"},
		{"refresh_to_auth", http.MethodPost, "/auth/refresh-token", "", "auth"},
		{"me_to_identity", http.MethodGet, "/users/me", "", "identity"},
		{"register_to_identity", http.MethodPost, "/users/register", `{"email":"a@b.c"}`, "identity"},
		{"nested_path_to_identity", http.MethodPatch, "/users/user-42/status", `{"status":"inactive"}`, "identity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			recorder := httptest.NewRecorder()

			router.ServeHTTP(recorder, request)
			require.Equal(t, http.StatusOK, recorder.Code)

			var echoed map[string]string
			require.NoError(t, json.NewDecoder(recorder.Body).Decode(&echoed))

			assert.Equal(t, tt.wantUpstream, echoed["upstream"])
			assert.Equal(t, tt.method, echoed["method"])
			assert.Equal(t, tt.path, echoed["path"], "path prefix must not be stripped")
			assert.Equal(t, tt.body, echoed["body"])
			assert.NotEmpty(t, echoed["xff"], "X-Forwarded-For must be set for upstream logs")
		})
	}
}

/*
TestRouter_UnknownPrefix verifies the gateway answers unmatched prefixes
itself with 404, never forwarding blind.
*/
func TestRouter_UnknownPrefix(t *testing.T) {
	authServer := httptest.NewServer(echoUpstream("auth"))
	defer authServer.Close()
	identityServer := httptest.NewServer(echoUpstream("identity"))
	defer identityServer.Close()

	router := newTestRouter(t, authServer.URL, identityServer.URL, time.Second)

	for _, path := range []string{"/", "/admin", "/api/v1/users", "/authx/login"} {
		request := httptest.NewRequest(http.MethodGet, path, nil)
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusNotFound, recorder.Code, "path %s", path)

		var envelope respond.ErrorEnvelope
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&envelope))
		assert.Equal(t, "NOT_FOUND", envelope.Error.Code)
	}
}

/*
TestRouter_UpstreamDown verifies a dead upstream surfaces as a 502 envelope
naming the failed service, while the healthy upstream keeps working.
*/
func TestRouter_UpstreamDown(t *testing.T) {
	deadServer := httptest.NewServer(echoUpstream("auth"))
	deadServer.Close() // refuses connections from here on

	identityServer := httptest.NewServer(echoUpstream("identity"))
	defer identityServer.Close()

	router := newTestRouter(t, deadServer.URL, identityServer.URL, time.Second)

	// Dead upstream → 502 with the service name.
	request := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusBadGateway, recorder.Code)

	var envelope respond.ErrorEnvelope
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&envelope))
	assert.Equal(t, "UPSTREAM_UNAVAILABLE", envelope.Error.Code)
	assert.Equal(t, "auth service is unavailable", envelope.Error.Message)

	// Sibling upstream is unaffected.
	request = httptest.NewRequest(http.MethodGet, "/users/me", nil)
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

/*
TestRouter_UpstreamTimeout verifies the per-round-trip deadline converts a
hung upstream into a 502 instead of a hung client connection.
*/
func TestRouter_UpstreamTimeout(t *testing.T) {
	slowServer := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-request.Context().Done():
		}
	}))
	defer slowServer.Close()

	identityServer := httptest.NewServer(echoUpstream("identity"))
	defer identityServer.Close()

	router := newTestRouter(t, slowServer.URL, identityServer.URL, 100*time.Millisecond)

	request := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	recorder := httptest.NewRecorder()

	start := time.Now()
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusBadGateway, recorder.Code)
	assert.Less(t, time.Since(start), time.Second)
}

/*
TestRouter_HealthEndpoints verifies the gateway answers its own probes
locally rather than proxying them.
*/
func TestRouter_HealthEndpoints(t *testing.T) {
	// No upstreams running at all: probes must still answer.
	router := newTestRouter(t, "http://127.0.0.1:1", "http://127.0.0.1:1", time.Second)

	for _, path := range []string{"/health", "/ready"} {
		request := httptest.NewRequest(http.MethodGet, path, nil)
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusOK, recorder.Code, "path %s", path)
	}
}
