// Copyright (c) 2026 Arcade. All rights reserved.
// Author: platform@arcade.gg

package users

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arcadehq/arcade/internal/identity"
	"github.com/arcadehq/arcade/internal/platform/middleware"
	requestutil "github.com/arcadehq/arcade/internal/platform/request"
	"github.com/arcadehq/arcade/internal/platform/respond"
	"github.com/arcadehq/arcade/internal/platform/sec"
	"github.com/arcadehq/arcade/internal/platform/validate"
)

// Handler implements the identity service's HTTP endpoints.
//
// # Scope
//
// Two route families:
//   - /users/*: public registration plus role-protected account operations.
//   - /internal/users/*: unauthenticated service-to-service lookups used by
//     the identity resolver and the login flow. These are reachable only on
//     the trusted service network, never through the gateway.
type Handler struct {
	service *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the public route tree.
//
// # Parameters
//   - authenticate: the authentication gate to apply to protected routes.
//     Public routes (registration) are mounted outside of it.
//
// # Endpoints
//   - POST  /users/register    : Creates a new player account.
//   - GET   /users/me          : Authenticated only (empty role set).
//   - GET   /users             : Requires role admin.
//   - PATCH /users/{id}/status : Requires role admin.
func (handler *Handler) Routes(authenticate func(http.Handler) http.Handler) chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)

	router.Group(func(protected chi.Router) {
		protected.Use(authenticate)

		protected.With(middleware.RequireRoles()).Get("/me", handler.me)
		protected.With(middleware.RequireRoles(sec.RoleAdmin)).Get("/", handler.list)
		protected.With(middleware.RequireRoles(sec.RoleAdmin)).Patch("/{id}/status", handler.setStatus)
	})

	return router
}

// InternalRoutes returns the service-to-service lookup tree.
func (handler *Handler) InternalRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/users/{id}", handler.internalByID)
	router.Get("/users/by-email/{email}", handler.internalByEmail)

	return router
}

// registerRequest represents the JSON payload expected for account creation.
type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

// register handles POST /users/register requests.
//
// # Returns
//   - Writes HTTP 201 Created on success with the account profile.
//   - Writes HTTP 400 Bad Request if validation rules fail.
//   - Writes HTTP 409 Conflict if the email is taken.
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Payload Extraction ─────────────────────────────────────────────

	var input registerRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 2. Boundary Validation ────────────────────────────────────────────

	validator := &validate.Validator{}
	validator.Required("email", input.Email).Email("email", input.Email)
	validator.Required("password", input.Password).MinLen("password", input.Password, 8)
	validator.Required("fullName", input.FullName).MaxLen("fullName", input.FullName, 120)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 3. Application Execution ──────────────────────────────────────────

	user, err := handler.service.Register(request.Context(), RegisterInput{
		Email:    input.Email,
		Password: input.Password,
		FullName: input.FullName,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 4. Presentation Output ────────────────────────────────────────────

	respond.Created(writer, user)
}

// me handles GET /users/me. The principal was already resolved by the
// authentication gate; no second lookup is needed.
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, principal)
}

// list handles GET /users (admin only).
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	principals, err := handler.service.List(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"users": principals})
}

// setStatusRequest represents the JSON payload for a status flip.
type setStatusRequest struct {
	Status identity.Status `json:"status"`
}

// setStatus handles PATCH /users/{id}/status (admin only).
func (handler *Handler) setStatus(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")

	var input setStatusRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.SetStatus(request.Context(), id, input.Status); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{"message": "Status updated"})
}

// internalByID handles GET /internal/users/{id}.
//
// Returns the principal snapshot consumed by [identity.Client.ByID].
func (handler *Handler) internalByID(writer http.ResponseWriter, request *http.Request) {
	user, err := handler.service.GetByID(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user.Principal())
}

// internalByEmail handles GET /internal/users/by-email/{email}.
//
// Returns the credentials record (principal + password hash) consumed by the
// auth service's login flow.
func (handler *Handler) internalByEmail(writer http.ResponseWriter, request *http.Request) {
	user, err := handler.service.GetByEmail(request.Context(), requestutil.Param(request, "email"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user.Credentials())
}
