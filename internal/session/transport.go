// Copyright (c) 2026 Arcade. All rights reserved.
// Author: platform@arcade.gg

// Package session maps the stateless token pair onto HTTP transport.
//
// # Architecture
//
// A session is nothing but the (access token, refresh token) pair and the
// cookie attributes under which they travel. There is no server-side session
// record: creating a session is setting cookies, tearing it down is
// expiring them.
//
// Browser clients carry tokens in cookies; service-to-service and API
// clients use an Authorization bearer header. Extraction supports both, in
// that order, for the access token. The refresh token is accepted from its
// dedicated cookie ONLY, keeping the long-lived credential off arbitrary
// clients.
package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/arcadehq/arcade/internal/platform/constants"
)

// Transport writes and clears the session cookie pair.
type Transport struct {
	secure     bool
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTransport constructs a [Transport].
//
// # Parameters
//   - secure: true in production — switches cookies to Secure,
//     SameSite=None (cross-site frontends), and Partitioned. Development
//     uses SameSite=Lax over plain HTTP.
//   - accessTTL/refreshTTL: cookie max-ages, matching the token TTLs.
func NewTransport(secure bool, accessTTL, refreshTTL time.Duration) *Transport {
	return &Transport{
		secure:     secure,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Attach sets both session cookies on the response.
func (transport *Transport) Attach(writer http.ResponseWriter, accessToken, refreshToken string) {
	transport.AttachAccess(writer, accessToken)
	http.SetCookie(writer, transport.cookie(
		constants.RefreshTokenCookieName,
		refreshToken,
		constants.RefreshTokenCookiePath,
		transport.refreshTTL,
	))
}

// AttachAccess sets only the access cookie. Used by the refresh flow, which
// mints a new access token while leaving the refresh cookie untouched.
func (transport *Transport) AttachAccess(writer http.ResponseWriter, accessToken string) {
	http.SetCookie(writer, transport.cookie(
		constants.AccessTokenCookieName,
		accessToken,
		"/",
		transport.accessTTL,
	))
}

// Clear overwrites both cookies with immediately-expired empty values.
//
// Logout must be idempotent: clearing a session that never existed is not an
// error, it just sets the same expired cookies again.
func (transport *Transport) Clear(writer http.ResponseWriter) {
	http.SetCookie(writer, transport.cookie(constants.AccessTokenCookieName, "", "/", -time.Second))
	http.SetCookie(writer, transport.cookie(constants.RefreshTokenCookieName, "", constants.RefreshTokenCookiePath, -time.Second))
}

// cookie builds a cookie with the transport's security attributes.
func (transport *Transport) cookie(name, value, path string, ttl time.Duration) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if transport.secure {
		// Cross-site production frontends require SameSite=None, which in
		// turn requires Secure.
		sameSite = http.SameSiteNoneMode
	}

	maxAge := int(ttl.Seconds())
	if ttl < 0 {
		maxAge = -1
	}

	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   transport.secure,
		SameSite: sameSite,
		// Partitioned keeps the cookies valid under third-party cookie
		// restrictions (CHIPS).
		Partitioned: transport.secure,
	}
}

// # Extraction

// ExtractAccessToken returns the access token from the request, preferring
// the access cookie and falling back to an Authorization bearer header.
func ExtractAccessToken(request *http.Request) (string, bool) {
	if cookie, err := request.Cookie(constants.AccessTokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}

	authHeader := request.Header.Get(constants.HeaderAuthorization)
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}

	return parts[1], true
}

// ExtractRefreshToken returns the refresh token from its dedicated cookie.
// Headers are deliberately not consulted.
func ExtractRefreshToken(request *http.Request) (string, bool) {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}
