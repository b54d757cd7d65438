// Copyright (c) 2026 Arcade. All rights reserved.
// Author: platform@arcade.gg

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arcadehq/arcade/internal/platform/apperr"
	"github.com/arcadehq/arcade/internal/platform/middleware"
	requestutil "github.com/arcadehq/arcade/internal/platform/request"
	"github.com/arcadehq/arcade/internal/platform/respond"
	"github.com/arcadehq/arcade/internal/platform/validate"
	"github.com/arcadehq/arcade/internal/session"
)

// Handler implements the authentication HTTP endpoints.
//
// # Scope
//
// Login, logout, and refresh. These routes sit in front of the
// authentication gate: login and refresh establish credentials rather than
// requiring them, and logout must succeed even without a session.
type Handler struct {
	service   *Service
	transport *session.Transport
}

// NewHandler constructs a new [Handler] with its dependencies.
func NewHandler(service *Service, transport *session.Transport) *Handler {
	return &Handler{service: service, transport: transport}
}

// Routes returns a [chi.Router] configured with the authentication routes.
//
// # Endpoints
//   - POST /login         : Authenticates and establishes the cookie session.
//   - POST /logout        : Clears the cookie session (idempotent).
//   - POST /refresh-token : Mints a new access token from the refresh cookie.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/login", handler.login)
	router.Post("/logout", handler.logout)
	router.Post("/refresh-token", handler.refresh)

	return router
}

// loginRequest represents the JSON payload expected for authentication.
type loginRequest struct {
	Identifier string `json:"identifier"` // Registered email address.
	Password   string `json:"password"`
}

// userPayload is the public account shape embedded in the login response.
type userPayload struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

// login handles POST /auth/login requests.
//
// # Returns
//   - Writes HTTP 200 OK with both tokens and the user profile, and sets
//     the session cookies.
//   - Writes HTTP 400 Bad Request for missing credentials, unknown
//     identifier, inactive account, or password mismatch.
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Payload Extraction ─────────────────────────────────────────────

	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 2. Boundary Validation ────────────────────────────────────────────

	validator := &validate.Validator{}
	validator.Required("identifier", input.Identifier)
	validator.Required("password", input.Password)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 3. Application Execution ──────────────────────────────────────────

	established, err := handler.service.Login(request.Context(), LoginInput{
		Identifier: input.Identifier,
		Password:   input.Password,
		ClientIP:   middleware.RealIP(request),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 4. Session Attachment & Output ────────────────────────────────────

	handler.transport.Attach(writer, established.AccessToken, established.RefreshToken)

	respond.OK(writer, map[string]any{
		"accessToken":  established.AccessToken,
		"refreshToken": established.RefreshToken,
		"user": userPayload{
			ID:       established.Principal.ID,
			Email:    established.Principal.Email,
			FullName: established.Principal.FullName,
			Role:     string(established.Principal.Role),
		},
	})
}

// logout handles POST /auth/logout requests.
//
// Always answers 200: tearing down a session that never existed is not an
// error. Note that previously issued access tokens remain valid until their
// natural expiry — sessions are stateless and there is no server-side
// revocation list.
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	handler.transport.Clear(writer)

	respond.OK(writer, map[string]string{"message": "Logged out successfully"})
}

// refresh handles POST /auth/refresh-token requests.
//
// The refresh token is read from its dedicated cookie ONLY — a bearer header
// is deliberately not accepted for the long-lived credential.
//
// # Returns
//   - Writes HTTP 200 OK with the new access token and re-attaches the
//     access cookie. The refresh cookie is left untouched (no rotation).
//   - Writes HTTP 401 when the refresh cookie is missing or invalid; the
//     client must re-authenticate via login.
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	refreshToken, found := session.ExtractRefreshToken(request)
	if !found {
		respond.Error(writer, request, apperr.UnauthorizedCode("NO_REFRESH_TOKEN", "Refresh token is required"))
		return
	}

	established, err := handler.service.Refresh(request.Context(), refreshToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.transport.AttachAccess(writer, established.AccessToken)

	respond.OK(writer, map[string]any{
		"message":     "Token refreshed successfully",
		"accessToken": established.AccessToken,
	})
}
