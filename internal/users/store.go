// Copyright (c) 2026 Arcade. All rights reserved.
// Author: platform@arcade.gg

package users

import (
	"context"

	"github.com/arcadehq/arcade/internal/identity"
)

// Repository defines the data access contract for accounts.
//
// # Review Process
//
// This interface is placed in a separate file from user.go so entity changes
// and storage-contract changes can be reviewed independently.
//
// # Implementations
//
// The canonical implementation is PostgreSQL ([PostgresRepository]).
type Repository interface {
	// FindByID returns the account with the given ID.
	//
	// Returns [apperr.NotFound] if the account does not exist.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByEmail returns the account with the given email.
	//
	// Returns [apperr.NotFound] if no account is registered with this email.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// Create persists a brand-new account.
	//
	// Returns [apperr.Conflict] if the email is already registered.
	Create(ctx context.Context, user *User) error

	// List returns all accounts ordered by creation time.
	List(ctx context.Context) ([]*User, error)

	// UpdateStatus flips an account between active and inactive.
	// The flip is authoritative immediately: the next authenticated request
	// anywhere in the system sees the new status.
	UpdateStatus(ctx context.Context, id string, status identity.Status) error
}
