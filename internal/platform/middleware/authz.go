// Copyright (c) 2026 Arcade. All rights reserved.
// Author: platform@arcade.gg

package middleware

import (
	"net/http"

	"github.com/arcadehq/arcade/internal/platform/apperr"
	"github.com/arcadehq/arcade/internal/platform/ctxutil"
	"github.com/arcadehq/arcade/internal/platform/respond"
	"github.com/arcadehq/arcade/internal/platform/sec"
)

// RequireRoles is the authorization gate for a declared required-role set.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate]. An empty role set
// means "authenticated only".
//
// # Flow
//  1. Check that a principal exists in context (implies the authentication
//     gate ran and passed).
//  2. Re-check that the principal is ACTIVE, so the gate holds even when
//     registered without [Authenticate] in front of it.
//  3. Check that the principal's role is in the required set; deny with
//     HTTP 403 naming the required set and the actual role.
func RequireRoles(required ...sec.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			principal := ctxutil.GetPrincipal(request.Context())

			// ── 1. Authentication Check ───────────────────────────────────────
			if principal == nil {
				respond.Error(writer, request, apperr.UnauthorizedCode("NO_TOKEN", "Authentication required"))
				return
			}

			// ── 2. Liveness Check ─────────────────────────────────────────────
			if !principal.IsActive() {
				respond.Error(writer, request, apperr.UnauthorizedCode("ACCOUNT_INACTIVE", "Account is deactivated"))
				return
			}

			// ── 3. Role Check ─────────────────────────────────────────────────
			if len(required) > 0 && !principal.Role.In(required...) {
				respond.Error(writer, request, apperr.RoleForbidden(sec.RoleNames(required), string(principal.Role)))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
