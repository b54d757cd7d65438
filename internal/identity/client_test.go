// Copyright (c) 2026 Arcade. All rights reserved.
// Author: platform@arcade.gg

package identity_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcadehq/arcade/internal/identity"
)

// discardLogger keeps client warnings out of test output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

/*
TestClient_ByID_Found round-trips a principal through the internal lookup
endpoint.
*/
func TestClient_ByID_Found(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/internal/users/user-42", request.URL.Path)

		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{
			"id": "user-42",
			"email": "player@arcade.gg",
			"fullName": "Test Player",
			"role": "player",
			"status": "active"
		}`))
	}))
	defer server.Close()

	client := identity.NewClient(server.URL, time.Second, discardLogger())

	principal, err := client.ByID(context.Background(), "user-42")
	require.NoError(t, err)

	assert.Equal(t, "user-42", principal.ID)
	assert.Equal(t, "player@arcade.gg", principal.Email)
	assert.True(t, principal.IsActive())
}

/*
TestClient_ByID_NotFound maps an authoritative 404 to ErrNotFound.
*/
func TestClient_ByID_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		http.Error(writer, `{"error":{"status":404,"message":"User not found","code":"NOT_FOUND"}}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := identity.NewClient(server.URL, time.Second, discardLogger())

	principal, err := client.ByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, identity.ErrNotFound)
	assert.Nil(t, principal)
}

/*
TestClient_ByID_ServerError maps a 5xx answer to ErrUnreachable, NOT to
ErrNotFound: a failing identity service is not a verdict on the account.
*/
func TestClient_ByID_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		http.Error(writer, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := identity.NewClient(server.URL, time.Second, discardLogger())

	_, err := client.ByID(context.Background(), "user-42")
	assert.ErrorIs(t, err, identity.ErrUnreachable)
	assert.NotErrorIs(t, err, identity.ErrNotFound)
}

/*
TestClient_ByID_NetworkDown maps connection failures to ErrUnreachable.
*/
func TestClient_ByID_NetworkDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close() // immediately, so the address refuses connections

	client := identity.NewClient(server.URL, time.Second, discardLogger())

	_, err := client.ByID(context.Background(), "user-42")
	assert.ErrorIs(t, err, identity.ErrUnreachable)
}

/*
TestClient_ByID_MalformedBody maps an undecodable 200 body to ErrUnreachable.
*/
func TestClient_ByID_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_, _ = writer.Write([]byte("this is not json"))
	}))
	defer server.Close()

	client := identity.NewClient(server.URL, time.Second, discardLogger())

	_, err := client.ByID(context.Background(), "user-42")
	assert.ErrorIs(t, err, identity.ErrUnreachable)
}

/*
TestClient_CredentialsByEmail verifies the login-flow lookup carries the
password hash alongside the principal, and that the path escapes the email.
*/
func TestClient_CredentialsByEmail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/internal/users/by-email/player@arcade.gg", request.URL.Path)

		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{
			"id": "user-42",
			"email": "player@arcade.gg",
			"fullName": "Test Player",
			"role": "player",
			"status": "active",
			"passwordHash": "$2a$10$fakefakefakefakefakefake"
		}`))
	}))
	defer server.Close()

	client := identity.NewClient(server.URL, time.Second, discardLogger())

	credentials, err := client.CredentialsByEmail(context.Background(), "player@arcade.gg")
	require.NoError(t, err)

	assert.Equal(t, "user-42", credentials.ID)
	assert.Equal(t, "$2a$10$fakefakefakefakefakefake", credentials.PasswordHash)
}

/*
TestClient_Timeout verifies a slow identity service trips the per-lookup
deadline instead of hanging the caller.
*/
func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	client := identity.NewClient(server.URL, 50*time.Millisecond, discardLogger())

	start := time.Now()
	_, err := client.ByID(context.Background(), "user-42")

	assert.ErrorIs(t, err, identity.ErrUnreachable)
	assert.Less(t, time.Since(start), 250*time.Millisecond)
}
