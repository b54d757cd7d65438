// Copyright (c) 2026 Arcade. All rights reserved.
// Author: platform@arcade.gg

package users

import (
	"context"
	"fmt"

	"github.com/arcadehq/arcade/internal/identity"
	"github.com/arcadehq/arcade/internal/platform/apperr"
	"github.com/arcadehq/arcade/internal/platform/sec"
	"github.com/arcadehq/arcade/pkg/uuidv7"
)

// Service implements account lifecycle use cases.
//
// # Review Process
//
// This service is the single writer of password hashes and the single
// authority on account status. Any changes to hashing or status logic must
// be reviewed by the security team.
type Service struct {
	repository Repository
}

// NewService constructs a new [Service] with its storage dependency.
func NewService(repository Repository) *Service {
	return &Service{repository: repository}
}

// RegisterInput holds the data required to enroll a new account.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
}

// Register validates, hashes, and persists a brand new account.
//
// # Business Rules
//   - Emails must be unique.
//   - Default role is always 'player'; privileged roles are assigned by an
//     admin after the fact, never self-selected at signup.
//   - New accounts start ACTIVE.
func (service *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	// ── 1. Uniqueness Check ───────────────────────────────────────────────

	if _, err := service.repository.FindByEmail(ctx, input.Email); err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// ── 2. Security ───────────────────────────────────────────────────────

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("users_service_hash_failed: %w", err)
	}

	// ── 3. Entity Construction ────────────────────────────────────────────

	user := &User{
		ID:           uuidv7.New(), // Time-sortable ID to prevent PG index fragmentation.
		Email:        input.Email,
		PasswordHash: hashedPassword,
		FullName:     input.FullName,
		Role:         sec.RolePlayer,
		Status:       identity.StatusActive,
	}

	// ── 4. Persistence ────────────────────────────────────────────────────

	if err := service.repository.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("users_service_register_failed: %w", err)
	}

	return user, nil
}

// GetByID returns the account with the given id.
func (service *Service) GetByID(ctx context.Context, id string) (*User, error) {
	return service.repository.FindByID(ctx, id)
}

// GetByEmail returns the account registered under the given email.
func (service *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return service.repository.FindByEmail(ctx, email)
}

// List returns every account as principal snapshots (no password hashes).
func (service *Service) List(ctx context.Context) ([]*identity.Principal, error) {
	accounts, err := service.repository.List(ctx)
	if err != nil {
		return nil, err
	}

	principals := make([]*identity.Principal, 0, len(accounts))
	for _, account := range accounts {
		principals = append(principals, account.Principal())
	}
	return principals, nil
}

// SetStatus flips an account between active and inactive.
//
// Because every authenticated request re-resolves its principal against this
// service, deactivation takes effect on the subject's next request even while
// their access token is still unexpired.
func (service *Service) SetStatus(ctx context.Context, id string, status identity.Status) error {
	if status != identity.StatusActive && status != identity.StatusInactive {
		return apperr.ValidationError("Validation failed", apperr.FieldError{
			Field:   "status",
			Message: "Must be active or inactive",
		})
	}

	return service.repository.UpdateStatus(ctx, id, status)
}
