// Copyright (c) 2026 Arcade. All rights reserved.
// Author: platform@arcade.gg

package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/arcadehq/arcade/internal/identity"
	"github.com/arcadehq/arcade/internal/platform/apperr"
	"github.com/arcadehq/arcade/internal/platform/ctxutil"
	"github.com/arcadehq/arcade/internal/platform/respond"
	"github.com/arcadehq/arcade/internal/platform/sec"
	"github.com/arcadehq/arcade/internal/session"
)

// TokenVerifier defines the verification contract the authentication gate
// needs from the token codec.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the middleware from [sec.Codec],
// allowing tests to inject fakes without minting real tokens.
type TokenVerifier interface {
	Verify(kind sec.Kind, token string) (*sec.Claims, error)
}

// Authenticate is the authentication gate applied to protected routes.
//
// # Flow (per request)
//  1. Extract the access token (cookie first, then bearer header).
//     Missing → 401 NO_TOKEN.
//  2. Verify signature and expiry against the access secret.
//     Expired → 401 TOKEN_EXPIRED (client is expected to call refresh).
//     Malformed or bad signature → 401 TOKEN_INVALID.
//  3. Resolve the principal live from the identity service.
//     Not found or unreachable → 401 USER_NOT_FOUND.
//  4. Require status ACTIVE → else 401 ACCOUNT_INACTIVE.
//  5. Inject the principal into the request context and continue.
//
// Authorization is therefore never based purely on token contents:
// deactivation takes effect on the very next request even though the token
// itself has not expired, because the identity service is consulted live.
//
// Any unexpected internal fault during steps 2-4 maps to 500, distinct from
// the 401 family, since it signals an operator-visible problem rather than a
// client credential problem.
func Authenticate(verifier TokenVerifier, resolver identity.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := request.Context()

			// ── 1. Token Extraction ───────────────────────────────────────────
			token, found := session.ExtractAccessToken(request)
			if !found {
				respond.Error(writer, request, apperr.UnauthorizedCode("NO_TOKEN", "Authentication required"))
				return
			}

			// ── 2. Token Verification ─────────────────────────────────────────
			claims, err := verifier.Verify(sec.KindAccess, token)
			if err != nil {
				if errors.Is(err, sec.ErrTokenExpired) {
					respond.Error(writer, request, apperr.UnauthorizedCode("TOKEN_EXPIRED", "Access token has expired"))
					return
				}
				respond.Error(writer, request, apperr.UnauthorizedCode("TOKEN_INVALID", "Invalid access token"))
				return
			}

			// ── 3. Principal Resolution ───────────────────────────────────────
			principal, err := resolver.ByID(ctx, claims.Subject)
			if err != nil {
				switch {
				case errors.Is(err, identity.ErrNotFound), errors.Is(err, identity.ErrUnreachable):
					// Unreachable collapses to the same 401 as not-found: the
					// system cannot safely assume identity when it cannot
					// confirm it. The cases stay distinguishable in logs.
					ctxutil.GetLogger(ctx).WarnContext(ctx, "principal_resolution_rejected",
						slog.String("subject_id", claims.Subject),
						slog.Any("error", err),
					)
					respond.Error(writer, request, apperr.UnauthorizedCode("USER_NOT_FOUND", "Account could not be verified"))
				default:
					respond.Error(writer, request, apperr.Internal(err))
				}
				return
			}

			// ── 4. Liveness Check ─────────────────────────────────────────────
			if !principal.IsActive() {
				respond.Error(writer, request, apperr.UnauthorizedCode("ACCOUNT_INACTIVE", "Account is deactivated"))
				return
			}

			// ── 5. Context Injection ──────────────────────────────────────────
			next.ServeHTTP(writer, request.WithContext(ctxutil.WithPrincipal(ctx, principal)))
		})
	}
}
