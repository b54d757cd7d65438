// Copyright (c) 2026 Arcade. All rights reserved.
// Author: platform@arcade.gg

package users

import (
	"context"

	"github.com/arcadehq/arcade/internal/identity"
	"github.com/arcadehq/arcade/internal/platform/apperr"
)

// LocalResolver adapts [Service] to the [identity.Resolver] contract.
//
// The identity service is itself the system of record, so its own protected
// routes resolve principals directly from storage instead of making an HTTP
// round trip to itself. External services use [identity.Client] and get the
// same semantics.
type LocalResolver struct {
	service *Service
}

// NewLocalResolver constructs the adapter.
func NewLocalResolver(service *Service) *LocalResolver {
	return &LocalResolver{service: service}
}

// ByID implements [identity.Resolver].
func (resolver *LocalResolver) ByID(ctx context.Context, id string) (*identity.Principal, error) {
	user, err := resolver.service.GetByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err)
	}
	return user.Principal(), nil
}

// ByEmail implements [identity.Resolver].
func (resolver *LocalResolver) ByEmail(ctx context.Context, email string) (*identity.Principal, error) {
	user, err := resolver.service.GetByEmail(ctx, email)
	if err != nil {
		return nil, mapLookupError(err)
	}
	return user.Principal(), nil
}

// mapLookupError translates storage errors into the resolver's sentinel errors
// so the authentication gate behaves identically with either resolver.
func mapLookupError(err error) error {
	if appError := apperr.As(err); appError != nil && appError.Code == "NOT_FOUND" {
		return identity.ErrNotFound
	}
	return err
}
