// Copyright (c) 2026 Arcade. All rights reserved.
// Author: platform@arcade.gg

/*
Package apperr defines the centralized error taxonomy for the Arcade auth core.

It provides a rich error type that bridges the gap between low-level
infrastructure errors (token parsing, identity lookups, upstream proxying)
and the single JSON error envelope returned to clients.

Taxonomy (mirrors the HTTP boundary):

  - Credential errors:    400 (bad login input, unknown identifier, wrong password)
  - Token errors:         401 (missing/expired/invalid token)
  - Identity errors:      401 (user not found or inactive)
  - Authorization errors: 403 (role mismatch)
  - Upstream errors:      502/500 (gateway or identity service unreachable)

Every error that leaves a service layer should be wrapped as an [AppError]
to ensure consistent API responses.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the canonical error type for all Arcade services.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and optional structured details.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., upstream addresses).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "TOKEN_EXPIRED").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"message"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds structured context: per-field validation errors for
	// VALIDATION_ERROR, or the required/actual role set for FORBIDDEN.
	Details any `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("User") // Returns "User not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// InvalidCredentials creates the 400 [AppError] returned for every failed
// login attempt.
//
// # Security
//
// A single generic message covers unknown identifier, inactive account, and
// password mismatch so the endpoint cannot be used for account enumeration.
func InvalidCredentials() *AppError {
	return &AppError{
		Code:       "INVALID_CREDENTIALS",
		Message:    "Invalid email or password",
		HTTPStatus: http.StatusBadRequest,
	}
}

// Unauthorized creates a 401 [AppError] with the generic UNAUTHORIZED code.
func Unauthorized(msg string) *AppError {
	return UnauthorizedCode("UNAUTHORIZED", msg)
}

// UnauthorizedCode creates a 401 [AppError] with a specific rejection code.
//
// The authentication gate uses distinct codes (NO_TOKEN, TOKEN_EXPIRED,
// TOKEN_INVALID, USER_NOT_FOUND, ACCOUNT_INACTIVE) because clients respond
// differently: an expired token should silently trigger a refresh, while an
// invalid one requires a fresh login.
func UnauthorizedCode(code, msg string) *AppError {
	return &AppError{
		Code:       code,
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:       "FORBIDDEN",
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// RoleForbidden creates a 403 [AppError] naming the required role set and the
// caller's actual role.
//
// Role names are not secrets, so echoing them back is an acceptable leak that
// makes the denial actionable for API clients.
func RoleForbidden(required []string, actual string) *AppError {
	return &AppError{
		Code:       "FORBIDDEN",
		Message:    "Insufficient permissions",
		HTTPStatus: http.StatusForbidden,
		Details: map[string]any{
			"requiredRoles": required,
			"role":          actual,
		},
	}
}

// Conflict creates a 409 [AppError] for duplicate or unique-constraint violations.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       "CONFLICT",
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	appError := &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
	}
	if len(details) > 0 {
		appError.Details = details
	}
	return appError
}

// RateLimited creates a 429 [AppError].
func RateLimited(retryAfterSeconds int) *AppError {
	return &AppError{
		Code:       "RATE_LIMITED",
		Message:    fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// UpstreamUnavailable creates the 502 [AppError] the gateway returns when a
// configured backend cannot be reached or times out.
//
// The service name is included so the failure shape identifies which upstream
// failed without exposing its address.
func UpstreamUnavailable(service string, cause error) *AppError {
	return &AppError{
		Code:       "UPSTREAM_UNAVAILABLE",
		Message:    service + " service is unavailable",
		HTTPStatus: http.StatusBadGateway,
		Cause:      cause,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}
