// Copyright (c) 2026 Arcade. All rights reserved.
// Author: platform@arcade.gg

package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

var (
	// ErrNotFound means the identity service answered authoritatively that no
	// such account exists.
	ErrNotFound = errors.New("identity: principal not found")

	// ErrUnreachable means the identity service could not be consulted
	// (network failure, timeout, or a non-2xx/404 answer). Callers treat it
	// like ErrNotFound at the HTTP boundary — the system cannot safely assume
	// an identity it cannot confirm — but the two stay distinguishable in logs.
	ErrUnreachable = errors.New("identity: service unreachable")
)

// Resolver resolves a subject id or email to a current [Principal] snapshot.
//
// # Why an interface?
//
// The authentication gate and the auth service depend on this contract, not
// on the HTTP client, so the identity service itself can satisfy it with a
// local store adapter and tests can inject fakes.
type Resolver interface {
	// ByID returns the principal with the given subject id.
	ByID(ctx context.Context, id string) (*Principal, error)

	// ByEmail returns the principal registered under the given email.
	ByEmail(ctx context.Context, email string) (*Principal, error)
}

// Client is the HTTP implementation of [Resolver], backed by the identity
// service's internal lookup endpoints.
//
// # No caching
//
// Every call pays one network round trip. This is a deliberate
// simplicity-over-latency trade-off: a stale cached principal would defeat
// the live-status invariant the gates depend on.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient constructs a resolver client for the identity service.
//
// # Parameters
//   - baseURL: The identity service base URL (e.g. http://identity:8082).
//   - timeout: Hard deadline per lookup. On timeout the lookup fails with
//     [ErrUnreachable] rather than hanging the calling request.
func NewClient(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// ByID implements [Resolver] via GET /internal/users/{id}.
func (client *Client) ByID(ctx context.Context, id string) (*Principal, error) {
	principal := &Principal{}
	if err := client.get(ctx, "/internal/users/"+url.PathEscape(id), principal); err != nil {
		return nil, err
	}
	return principal, nil
}

// ByEmail implements [Resolver] via GET /internal/users/by-email/{email}.
func (client *Client) ByEmail(ctx context.Context, email string) (*Principal, error) {
	credentials, err := client.CredentialsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return &credentials.Principal, nil
}

// CredentialsByEmail returns the principal plus its stored password hash.
//
// # Scope
//
// Only the auth service's login flow uses this; the hash never travels
// further than the password comparison.
func (client *Client) CredentialsByEmail(ctx context.Context, email string) (*Credentials, error) {
	credentials := &Credentials{}
	if err := client.get(ctx, "/internal/users/by-email/"+url.PathEscape(email), credentials); err != nil {
		return nil, err
	}
	return credentials, nil
}

// get performs a single lookup and maps every failure mode to one of the two
// sentinel errors.
func (client *Client) get(ctx context.Context, path string, target any) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, client.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	request.Header.Set("Accept", "application/json")

	response, err := client.httpClient.Do(request)
	if err != nil {
		// Network failure or timeout. Logged so operators can tell
		// "unreachable" apart from "not found" even though both surface as 401.
		client.log.WarnContext(ctx, "identity_lookup_failed",
			slog.String("path", path),
			slog.Any("error", err),
		)
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer func() { _ = response.Body.Close() }()

	switch {
	case response.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case response.StatusCode < 200 || response.StatusCode > 299:
		client.log.WarnContext(ctx, "identity_lookup_unexpected_status",
			slog.String("path", path),
			slog.Int("status", response.StatusCode),
		)
		return fmt.Errorf("%w: unexpected status %d", ErrUnreachable, response.StatusCode)
	}

	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		return fmt.Errorf("%w: malformed response: %v", ErrUnreachable, err)
	}

	return nil
}
