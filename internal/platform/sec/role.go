// Copyright (c) 2026 Arcade. All rights reserved.
// Author: platform@arcade.gg

package sec

// # User Roles

// Role represents the authorization level granted to an account.
type Role string

const (
	// Unrestricted system access
	RoleAdmin Role = "admin"

	// Can manage community content and moderate comments/users
	RoleModerator Role = "moderator"

	// Default role for standard registered users
	RolePlayer Role = "player"
)

// IsValid reports whether the role is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RolePlayer:
		return true
	default:
		return false
	}
}

// In reports whether the role is a member of the required set.
//
// # Why set membership?
//
// Route policies declare the exact roles allowed to invoke them. There is no
// implicit hierarchy: an admin is not automatically allowed on a
// moderator-only route unless the policy names admin as well. This keeps the
// authorization decision identical to the declared policy.
func (r Role) In(required ...Role) bool {
	for _, candidate := range required {
		if r == candidate {
			return true
		}
	}
	return false
}

// RoleNames converts a role set to plain strings for error payloads and logs.
func RoleNames(roles []Role) []string {
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}
	return names
}
