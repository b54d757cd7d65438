// Copyright (c) 2026 Arcade. All rights reserved.
// Author: platform@arcade.gg

package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcadehq/arcade/internal/auth"
	"github.com/arcadehq/arcade/internal/identity"
	"github.com/arcadehq/arcade/internal/platform/respond"
	"github.com/arcadehq/arcade/internal/platform/sec"
	"github.com/arcadehq/arcade/internal/session"
)

// newAuthRouter wires a handler exactly as cmd/auth does: real codec, real
// transport, faked identity lookups.
func newAuthRouter(t *testing.T, codec *sec.Codec, account *identity.Credentials) chi.Router {
	t.Helper()

	var resolver fakeResolver
	var source fakeCredentialSource
	if account != nil {
		source.credentials = account
		resolver.principal = &account.Principal
	} else {
		resolver.err = identity.ErrNotFound
	}

	service := auth.NewService(codec, &source, &resolver, newMemLimiter(10))
	transport := session.NewTransport(false, 15*time.Minute, 24*time.Hour)
	handler := auth.NewHandler(service, transport)

	router := chi.NewRouter()
	router.Mount("/auth", handler.Routes())
	return router
}

func responseCookie(t *testing.T, recorder *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()

	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

/*
TestHandler_Login_Success verifies the full login response contract: token
pair in the body, user profile without the password hash, and both session
cookies attached.
*/
func TestHandler_Login_Success(t *testing.T) {
	codec := newTestCodec(t)
	router := newAuthRouter(t, codec, testAccount(t, "correct-password", identity.StatusActive))

	request := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"identifier":"player@arcade.gg","password":"correct-password"}`))
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
		User         struct {
			ID       string `json:"id"`
			Email    string `json:"email"`
			FullName string `json:"fullName"`
			Role     string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&body))

	_, err := codec.Verify(sec.KindAccess, body.AccessToken)
	assert.NoError(t, err)
	_, err = codec.Verify(sec.KindRefresh, body.RefreshToken)
	assert.NoError(t, err)

	assert.Equal(t, "user-42", body.User.ID)
	assert.Equal(t, "player@arcade.gg", body.User.Email)
	assert.Equal(t, "Test Player", body.User.FullName)
	assert.Equal(t, "player", body.User.Role)

	assert.NotContains(t, recorder.Body.String(), "passwordHash")

	accessCookie := responseCookie(t, recorder, "accessToken")
	require.NotNil(t, accessCookie)
	assert.Equal(t, body.AccessToken, accessCookie.Value)
	assert.Equal(t, "/", accessCookie.Path)

	refreshCookie := responseCookie(t, recorder, "refreshToken")
	require.NotNil(t, refreshCookie)
	assert.Equal(t, body.RefreshToken, refreshCookie.Value)
	assert.Equal(t, "/auth", refreshCookie.Path)
}

/*
TestHandler_Login_BadRequests covers malformed and incomplete payloads.
*/
func TestHandler_Login_BadRequests(t *testing.T) {
	codec := newTestCodec(t)
	router := newAuthRouter(t, codec, testAccount(t, "correct-password", identity.StatusActive))

	tests := []struct {
		name     string
		payload  string
		wantCode string
	}{
		{"invalid_json", `{"identifier":`, "VALIDATION_ERROR"},
		{"missing_identifier", `{"password":"secret"}`, "VALIDATION_ERROR"},
		{"missing_password", `{"identifier":"player@arcade.gg"}`, "VALIDATION_ERROR"},
		{"wrong_credentials", `{"identifier":"player@arcade.gg","password":"nope"}`, "INVALID_CREDENTIALS"},
		{"unknown_account", `{"identifier":"ghost@arcade.gg","password":"secret"}`, "INVALID_CREDENTIALS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tt.payload))
			recorder := httptest.NewRecorder()

			router.ServeHTTP(recorder, request)
			assert.Equal(t, http.StatusBadRequest, recorder.Code)

			var envelope respond.ErrorEnvelope
			require.NoError(t, json.NewDecoder(recorder.Body).Decode(&envelope))
			assert.Equal(t, tt.wantCode, envelope.Error.Code)

			assert.Nil(t, responseCookie(t, recorder, "accessToken"), "no cookies on failed login")
		})
	}
}

/*
TestHandler_Logout verifies logout always answers 200 and expires both
cookies, session or no session.
*/
func TestHandler_Logout(t *testing.T) {
	codec := newTestCodec(t)
	router := newAuthRouter(t, codec, nil)

	// No cookies at all: still 200.
	request := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)

	accessCookie := responseCookie(t, recorder, "accessToken")
	require.NotNil(t, accessCookie)
	assert.Empty(t, accessCookie.Value)
	assert.Equal(t, -1, accessCookie.MaxAge)

	refreshCookie := responseCookie(t, recorder, "refreshToken")
	require.NotNil(t, refreshCookie)
	assert.Equal(t, -1, refreshCookie.MaxAge)
}

/*
TestHandler_Refresh verifies the cookie-only refresh flow: a fresh access
token and cookie come back, and the refresh cookie is left untouched.
*/
func TestHandler_Refresh(t *testing.T) {
	codec := newTestCodec(t)
	account := testAccount(t, "correct-password", identity.StatusActive)
	router := newAuthRouter(t, codec, account)

	refreshToken, err := codec.IssueRefresh("user-42")
	require.NoError(t, err)

	request := httptest.NewRequest(http.MethodPost, "/auth/refresh-token", nil)
	request.AddCookie(&http.Cookie{Name: "refreshToken", Value: refreshToken})
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Message     string `json:"message"`
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&body))

	claims, err := codec.Verify(sec.KindAccess, body.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.Subject)

	accessCookie := responseCookie(t, recorder, "accessToken")
	require.NotNil(t, accessCookie)
	assert.Equal(t, body.AccessToken, accessCookie.Value)

	assert.Nil(t, responseCookie(t, recorder, "refreshToken"), "refresh cookie must not be rewritten")
}

/*
TestHandler_Refresh_Rejections covers the refresh endpoint's 401 cases,
including a refresh token smuggled in a bearer header instead of the cookie.
*/
func TestHandler_Refresh_Rejections(t *testing.T) {
	codec := newTestCodec(t)
	router := newAuthRouter(t, codec, testAccount(t, "correct-password", identity.StatusActive))

	refreshToken, err := codec.IssueRefresh("user-42")
	require.NoError(t, err)

	tests := []struct {
		name     string
		decorate func(*http.Request)
		wantCode string
	}{
		{
			name:     "no_cookie",
			decorate: func(*http.Request) {},
			wantCode: "NO_REFRESH_TOKEN",
		},
		{
			name: "bearer_header_not_accepted",
			decorate: func(request *http.Request) {
				request.Header.Set("Authorization", "Bearer "+refreshToken)
			},
			wantCode: "NO_REFRESH_TOKEN",
		},
		{
			name: "garbage_cookie",
			decorate: func(request *http.Request) {
				request.AddCookie(&http.Cookie{Name: "refreshToken", Value: "garbage"})
			},
			wantCode: "INVALID_REFRESH_TOKEN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodPost, "/auth/refresh-token", nil)
			tt.decorate(request)
			recorder := httptest.NewRecorder()

			router.ServeHTTP(recorder, request)
			assert.Equal(t, http.StatusUnauthorized, recorder.Code)

			var envelope respond.ErrorEnvelope
			require.NoError(t, json.NewDecoder(recorder.Body).Decode(&envelope))
			assert.Equal(t, tt.wantCode, envelope.Error.Code)
		})
	}
}
