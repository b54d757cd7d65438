// Copyright (c) 2026 Arcade. All rights reserved.
// Author: platform@arcade.gg

// Package users implements the identity service: the system of record for
// accounts, and the authoritative source every principal lookup resolves
// against.
//
// # Architecture
//
// Entities in this package represent the "Truth" about who a caller is.
// Other services never read this storage directly — they consult the
// identity service over HTTP through [identity.Client], so role and status
// changes take effect on the very next request anywhere in the system.
package users

import (
	"time"

	"github.com/arcadehq/arcade/internal/identity"
	"github.com/arcadehq/arcade/internal/platform/sec"
)

// User represents a registered account.
//
// # Rules
//   - Email is unique and validated.
//   - PasswordHash is generated via Bcrypt exclusively via the Service.
//   - Status gates every authenticated operation: an inactive account is
//     rejected by the authentication gate even with a valid token.
type User struct {
	ID           string          `json:"id"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"` // Explicitly omitted from JSON for security.
	FullName     string          `json:"fullName"`
	Role         sec.Role        `json:"role"`
	Status       identity.Status `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Principal converts the stored record into the snapshot shape shared by the
// authentication and authorization gates.
func (u *User) Principal() *identity.Principal {
	return &identity.Principal{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     u.Role,
		Status:   u.Status,
	}
}

// Credentials converts the stored record into the internal lookup shape used
// by the login flow. The password hash travels no further than the auth
// service's comparison.
func (u *User) Credentials() *identity.Credentials {
	return &identity.Credentials{
		Principal:    *u.Principal(),
		PasswordHash: u.PasswordHash,
	}
}
