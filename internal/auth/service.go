// Copyright (c) 2026 Arcade. All rights reserved.
// Author: platform@arcade.gg

// Package auth implements the authentication service: login, logout, and
// access-token refresh.
//
// # Architecture
//
// The service holds no user storage of its own. Credentials are fetched
// live from the identity service, passwords are compared locally with
// bcrypt, and the resulting session exists only as the signed token pair —
// there is no session table anywhere.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/arcadehq/arcade/internal/identity"
	"github.com/arcadehq/arcade/internal/platform/apperr"
	"github.com/arcadehq/arcade/internal/platform/sec"
)

// TokenCodec defines the signing contract the service needs from [sec.Codec].
type TokenCodec interface {
	// IssueAccess mints a short-lived access token carrying subject, email, and role.
	IssueAccess(subjectID, email string, role sec.Role) (string, error)

	// IssueRefresh mints a long-lived refresh token carrying only the subject.
	IssueRefresh(subjectID string) (string, error)

	// Verify checks signature integrity and expiry for the given token kind.
	Verify(kind sec.Kind, token string) (*sec.Claims, error)
}

// CredentialSource fetches login credentials from the identity service.
type CredentialSource interface {
	CredentialsByEmail(ctx context.Context, email string) (*identity.Credentials, error)
}

// Service implements the authentication use cases.
type Service struct {
	codec       TokenCodec
	credentials CredentialSource
	resolver    identity.Resolver
	limiter     AttemptLimiter
}

// NewService constructs a new [Service] with its dependencies.
func NewService(codec TokenCodec, credentials CredentialSource, resolver identity.Resolver, limiter AttemptLimiter) *Service {
	return &Service{
		codec:       codec,
		credentials: credentials,
		resolver:    resolver,
		limiter:     limiter,
	}
}

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Identifier string // Email address the account was registered under.
	Password   string
	ClientIP   string // Used for login attempt throttling only.
}

// Session represents a successfully established stateless session.
type Session struct {
	AccessToken  string
	RefreshToken string
	Principal    *identity.Principal
}

// Login validates user credentials and issues the token pair.
//
// # Flow
//  1. Check the failed-attempt budget for identifier+IP.
//  2. Fetch credentials from the identity service.
//  3. Require status ACTIVE.
//  4. Verify the password hash using bcrypt.
//  5. Issue access + refresh tokens (distinct secrets, distinct TTLs).
//
// # Security
//
// Unknown identifier, inactive account, and password mismatch all return the
// same [apperr.InvalidCredentials] so the endpoint cannot be used to probe
// which emails are registered.
func (service *Service) Login(ctx context.Context, input LoginInput) (*Session, error) {
	attemptKey := input.Identifier + "|" + input.ClientIP

	// ── 1. Throttling ─────────────────────────────────────────────────────

	if err := service.limiter.Allow(ctx, attemptKey); err != nil {
		return nil, err
	}

	// ── 2. Credential Fetch ───────────────────────────────────────────────

	credentials, err := service.credentials.CredentialsByEmail(ctx, input.Identifier)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return nil, service.failedAttempt(ctx, attemptKey)
		}
		if errors.Is(err, identity.ErrUnreachable) {
			// Not a credential problem: surface an operator-visible fault
			// instead of silently rejecting the user.
			return nil, apperr.UpstreamUnavailable("identity", err)
		}
		return nil, fmt.Errorf("auth_service_credential_fetch_failed: %w", err)
	}

	// ── 3. Liveness Check ─────────────────────────────────────────────────

	if !credentials.IsActive() {
		return nil, service.failedAttempt(ctx, attemptKey)
	}

	// ── 4. Password Verification ──────────────────────────────────────────

	// bcrypt compares in constant time, preventing timing attacks.
	if !sec.CheckPasswordHash(input.Password, credentials.PasswordHash) {
		return nil, service.failedAttempt(ctx, attemptKey)
	}

	// ── 5. Token Issuance ─────────────────────────────────────────────────

	session, err := service.issueSession(&credentials.Principal)
	if err != nil {
		return nil, err
	}

	// A successful login clears the failed-attempt budget.
	_ = service.limiter.Reset(ctx, attemptKey)

	return session, nil
}

// Refresh validates a refresh token and mints a new access token without
// requiring the password again.
//
// # Rotation
//
// The refresh token itself is NOT rotated or invalidated: it remains valid
// until its own expiry, and two concurrent refreshes with the same token are
// both individually valid. Sessions stay fully stateless by construction.
func (service *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	// ── 1. Refresh Token Verification ─────────────────────────────────────

	claims, err := service.codec.Verify(sec.KindRefresh, refreshToken)
	if err != nil {
		// Expired and malformed collapse to one 401: either way the client
		// must re-authenticate via login.
		return nil, apperr.UnauthorizedCode("INVALID_REFRESH_TOKEN", "Invalid or expired refresh token")
	}

	// ── 2. Live Principal Resolution ──────────────────────────────────────

	// The new access token carries the subject's CURRENT role and email, not
	// whatever was true when the refresh token was minted.
	principal, err := service.resolver.ByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return nil, apperr.UnauthorizedCode("USER_NOT_FOUND", "Account could not be verified")
		}
		if errors.Is(err, identity.ErrUnreachable) {
			return nil, apperr.UpstreamUnavailable("identity", err)
		}
		return nil, fmt.Errorf("auth_service_refresh_resolution_failed: %w", err)
	}

	if !principal.IsActive() {
		return nil, apperr.UnauthorizedCode("ACCOUNT_INACTIVE", "Account is deactivated")
	}

	// ── 3. Access Token Issuance ──────────────────────────────────────────

	accessToken, err := service.codec.IssueAccess(principal.ID, principal.Email, principal.Role)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_access_token_failed: %w", err)
	}

	return &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken, // unchanged, see Rotation note above
		Principal:    principal,
	}, nil
}

// issueSession mints the access/refresh pair for an authenticated principal.
func (service *Service) issueSession(principal *identity.Principal) (*Session, error) {
	accessToken, err := service.codec.IssueAccess(principal.ID, principal.Email, principal.Role)
	if err != nil {
		return nil, fmt.Errorf("auth_service_access_token_failed: %w", err)
	}

	refreshToken, err := service.codec.IssueRefresh(principal.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	return &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Principal:    principal,
	}, nil
}

// failedAttempt records a failed login and returns the uniform credential error.
func (service *Service) failedAttempt(ctx context.Context, attemptKey string) error {
	_ = service.limiter.Fail(ctx, attemptKey)
	return apperr.InvalidCredentials()
}
