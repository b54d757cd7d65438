// Copyright (c) 2026 Arcade. All rights reserved.
// Author: platform@arcade.gg

package users

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arcadehq/arcade/internal/identity"
	"github.com/arcadehq/arcade/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows and unique violations) are
// mapped to domain-friendly [apperr.AppError] types via [dberr.Wrap] to
// avoid leaking storage implementation details.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL implementation of [Repository].
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const userColumns = `id, email, password_hash, full_name, role, status, created_at, updated_at`

// Create persists a new account row.
func (repository *PostgresRepository) Create(ctx context.Context, user *User) error {
	const query = `
		INSERT INTO accounts (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.Role,
		user.Status,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "Account")
	}

	return nil
}

// FindByID retrieves an account by its unique ID.
//
// # Returns
//
// Returns [*User] if found, or [apperr.NotFound] if no account exists.
func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM accounts
		WHERE id = $1`

	return repository.scanOne(repository.pool.QueryRow(ctx, query, id))
}

// FindByEmail retrieves an account by its unique email address.
//
// # Returns
//
// Returns [*User] if found, or [apperr.NotFound] if no account exists.
func (repository *PostgresRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM accounts
		WHERE lower(email) = lower($1)`

	return repository.scanOne(repository.pool.QueryRow(ctx, query, email))
}

// List returns every account, oldest first.
func (repository *PostgresRepository) List(ctx context.Context) ([]*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM accounts
		ORDER BY created_at ASC`

	rows, err := repository.pool.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "Account")
	}
	defer rows.Close()

	var result []*User
	for rows.Next() {
		user := &User{}
		if err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.PasswordHash,
			&user.FullName,
			&user.Role,
			&user.Status,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("users: scan failed: %w", err)
		}
		result = append(result, user)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "Account")
	}

	return result, nil
}

// UpdateStatus flips the account's lifecycle status.
func (repository *PostgresRepository) UpdateStatus(ctx context.Context, id string, status identity.Status) error {
	const query = `
		UPDATE accounts
		SET status = $2, updated_at = now()
		WHERE id = $1`

	tag, err := repository.pool.Exec(ctx, query, id, status)
	if err != nil {
		return dberr.Wrap(err, "Account")
	}
	if tag.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "Account")
	}

	return nil
}

// scanOne maps a single-row query result onto a [User].
func (repository *PostgresRepository) scanOne(row interface{ Scan(dest ...any) error }) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.Role,
		&user.Status,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Account")
	}
	return user, nil
}
