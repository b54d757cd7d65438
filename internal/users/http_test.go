// Copyright (c) 2026 Arcade. All rights reserved.
// Author: platform@arcade.gg

package users_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcadehq/arcade/internal/identity"
	"github.com/arcadehq/arcade/internal/platform/middleware"
	"github.com/arcadehq/arcade/internal/platform/respond"
	"github.com/arcadehq/arcade/internal/platform/sec"
	"github.com/arcadehq/arcade/internal/users"
)

// identityFixture wires the identity service route tree exactly as
// cmd/identity does: real codec, real gates, in-memory storage.
type identityFixture struct {
	router  chi.Router
	codec   *sec.Codec
	service *users.Service
}

func newIdentityFixture(t *testing.T) *identityFixture {
	t.Helper()

	codec, err := sec.NewCodec(sec.CodecConfig{
		AccessSecret:  "test-access-secret-0123456789",
		RefreshSecret: "test-refresh-secret-0123456789",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
		Issuer:        "arcade.gg",
	})
	require.NoError(t, err)

	service := users.NewService(newMemRepository())
	resolver := users.NewLocalResolver(service)
	handler := users.NewHandler(service)

	router := chi.NewRouter()
	router.Mount("/users", handler.Routes(middleware.Authenticate(codec, resolver)))
	router.Mount("/internal", handler.InternalRoutes())

	return &identityFixture{router: router, codec: codec, service: service}
}

// enroll registers an account and returns it with the requested role applied.
func (f *identityFixture) enroll(t *testing.T, email string, role sec.Role) *users.User {
	t.Helper()

	user, err := f.service.Register(context.Background(), users.RegisterInput{
		Email:    email,
		Password: "super-secret-pw",
		FullName: "Fixture Account",
	})
	require.NoError(t, err)

	// Privileged roles are assigned after enrollment, mirroring production.
	user.Role = role
	return user
}

// request performs an HTTP call, optionally authenticated as the given user.
func (f *identityFixture) request(t *testing.T, method, path, body string, as *users.User) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	request := httptest.NewRequest(method, path, reader)
	if as != nil {
		token, err := f.codec.IssueAccess(as.ID, as.Email, as.Role)
		require.NoError(t, err)
		request.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, request)
	return recorder
}

func errorCode(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()

	var envelope respond.ErrorEnvelope
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&envelope))
	return envelope.Error.Code
}

/*
TestHandler_Register covers the public enrollment endpoint.
*/
func TestHandler_Register(t *testing.T) {
	fixture := newIdentityFixture(t)

	recorder := fixture.request(t, http.MethodPost, "/users/register",
		`{"email":"new@arcade.gg","password":"super-secret-pw","fullName":"New Player"}`, nil)
	require.Equal(t, http.StatusCreated, recorder.Code)

	var created users.User
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&created))
	assert.Equal(t, "new@arcade.gg", created.Email)
	assert.Equal(t, sec.RolePlayer, created.Role)
	assert.NotContains(t, recorder.Body.String(), "super-secret-pw")
}

/*
TestHandler_Register_Validation covers the field rules at the boundary.
*/
func TestHandler_Register_Validation(t *testing.T) {
	fixture := newIdentityFixture(t)

	tests := []struct {
		name       string
		payload    string
		wantStatus int
		wantCode   string
	}{
		{"bad_json", `{`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"invalid_email", `{"email":"nope","password":"super-secret-pw","fullName":"X"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"short_password", `{"email":"a@b.cd","password":"short","fullName":"X"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"missing_full_name", `{"email":"a@b.cd","password":"super-secret-pw"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := fixture.request(t, http.MethodPost, "/users/register", tt.payload, nil)
			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.Equal(t, tt.wantCode, errorCode(t, recorder))
		})
	}
}

/*
TestHandler_Me verifies the profile endpoint requires authentication and
echoes the gate-resolved principal.
*/
func TestHandler_Me(t *testing.T) {
	fixture := newIdentityFixture(t)
	player := fixture.enroll(t, "player@arcade.gg", sec.RolePlayer)

	// Unauthenticated: 401.
	recorder := fixture.request(t, http.MethodGet, "/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "NO_TOKEN", errorCode(t, recorder))

	// Authenticated: the resolved principal comes back.
	recorder = fixture.request(t, http.MethodGet, "/users/me", "", player)
	require.Equal(t, http.StatusOK, recorder.Code)

	var principal identity.Principal
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&principal))
	assert.Equal(t, player.ID, principal.ID)
	assert.Equal(t, "player@arcade.gg", principal.Email)
}

/*
TestHandler_List_AdminOnly verifies the role gate on the account listing.
*/
func TestHandler_List_AdminOnly(t *testing.T) {
	fixture := newIdentityFixture(t)
	player := fixture.enroll(t, "player@arcade.gg", sec.RolePlayer)
	moderator := fixture.enroll(t, "mod@arcade.gg", sec.RoleModerator)
	admin := fixture.enroll(t, "admin@arcade.gg", sec.RoleAdmin)

	recorder := fixture.request(t, http.MethodGet, "/users/", "", player)
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	// Moderator is NOT admin: set membership, not hierarchy.
	recorder = fixture.request(t, http.MethodGet, "/users/", "", moderator)
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	recorder = fixture.request(t, http.MethodGet, "/users/", "", admin)
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Users []identity.Principal `json:"users"`
	}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&body))
	assert.Len(t, body.Users, 3)
}

/*
TestHandler_SetStatus_DeactivationBites verifies the end-to-end deactivation
invariant: after an admin flips an account to inactive, that account's still
unexpired token is rejected on its very next request.
*/
func TestHandler_SetStatus_DeactivationBites(t *testing.T) {
	fixture := newIdentityFixture(t)
	player := fixture.enroll(t, "player@arcade.gg", sec.RolePlayer)
	admin := fixture.enroll(t, "admin@arcade.gg", sec.RoleAdmin)

	// Player can reach /users/me.
	recorder := fixture.request(t, http.MethodGet, "/users/me", "", player)
	require.Equal(t, http.StatusOK, recorder.Code)

	// Admin deactivates the player.
	recorder = fixture.request(t, http.MethodPatch, "/users/"+player.ID+"/status",
		`{"status":"inactive"}`, admin)
	require.Equal(t, http.StatusOK, recorder.Code)

	// Same token, next request: rejected.
	recorder = fixture.request(t, http.MethodGet, "/users/me", "", player)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "ACCOUNT_INACTIVE", errorCode(t, recorder))
}

/*
TestHandler_InternalLookups verifies the service-to-service endpoints serve
the two lookup shapes: principal by id, credentials (with hash) by email.
*/
func TestHandler_InternalLookups(t *testing.T) {
	fixture := newIdentityFixture(t)
	player := fixture.enroll(t, "player@arcade.gg", sec.RolePlayer)

	// Principal by id: no password hash in the body.
	recorder := fixture.request(t, http.MethodGet, "/internal/users/"+player.ID, "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "passwordHash")

	var principal identity.Principal
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&principal))
	assert.Equal(t, player.ID, principal.ID)

	// Credentials by email: hash included for the login comparison.
	recorder = fixture.request(t, http.MethodGet, "/internal/users/by-email/player@arcade.gg", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var credentials identity.Credentials
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&credentials))
	assert.Equal(t, player.ID, credentials.ID)
	assert.True(t, sec.CheckPasswordHash("super-secret-pw", credentials.PasswordHash))

	// Unknown account: authoritative 404.
	recorder = fixture.request(t, http.MethodGet, "/internal/users/ghost", "", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
