// Copyright (c) 2026 Arcade. All rights reserved.
// Author: platform@arcade.gg

// Package identity defines the Principal — the resolved, authoritative
// identity of a request's caller — and the client used to resolve it from
// the identity service.
//
// # Architecture
//
// Authentication and authorization never trust token contents alone: the
// principal is re-resolved from the identity service on every authenticated
// request, so deactivation takes effect on the next request even while a
// token is still unexpired. One explicit Principal struct is shared by the
// authentication and authorization gates to avoid divergent "authenticated
// user" shapes between services.
package identity

import (
	"github.com/arcadehq/arcade/internal/platform/sec"
)

// Status represents the lifecycle state of an account.
type Status string

const (
	// StatusActive accounts may authenticate and invoke operations.
	StatusActive Status = "active"

	// StatusInactive accounts are rejected by the authentication gate even
	// when holding a structurally valid, unexpired token.
	StatusInactive Status = "inactive"
)

// Principal is the current snapshot of a caller's identity.
//
// It is produced by a [Resolver] from the identity service's current record
// and is never cached beyond the request that resolved it.
type Principal struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	FullName string   `json:"fullName"`
	Role     sec.Role `json:"role"`
	Status   Status   `json:"status"`
}

// IsActive reports whether the account may proceed with authenticated operations.
func (p *Principal) IsActive() bool {
	return p.Status == StatusActive
}

// Credentials is a principal snapshot plus the stored password hash.
//
// It is only ever transported over the internal service-to-service lookup
// used by the login flow, never to external clients.
type Credentials struct {
	Principal
	PasswordHash string `json:"passwordHash"`
}
