// Copyright (c) 2026 Arcade. All rights reserved.
// Author: platform@arcade.gg

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arcadehq/arcade/internal/platform/sec"
)

/*
TestRole_IsValid covers the known role set and rejects unknown values.
*/
func TestRole_IsValid(t *testing.T) {
	assert.True(t, sec.RoleAdmin.IsValid())
	assert.True(t, sec.RoleModerator.IsValid())
	assert.True(t, sec.RolePlayer.IsValid())

	assert.False(t, sec.Role("superuser").IsValid())
	assert.False(t, sec.Role("").IsValid())
	assert.False(t, sec.Role("Admin").IsValid())
}

/*
TestRole_In verifies set membership semantics: no hierarchy, exact naming
only. An admin is NOT implicitly allowed on a moderator-only policy.
*/
func TestRole_In(t *testing.T) {
	tests := []struct {
		name     string
		role     sec.Role
		required []sec.Role
		allowed  bool
	}{
		{"admin_in_admin_only", sec.RoleAdmin, []sec.Role{sec.RoleAdmin}, true},
		{"admin_not_in_moderator_only", sec.RoleAdmin, []sec.Role{sec.RoleModerator}, false},
		{"moderator_in_mixed_set", sec.RoleModerator, []sec.Role{sec.RoleAdmin, sec.RoleModerator}, true},
		{"player_not_in_mixed_set", sec.RolePlayer, []sec.Role{sec.RoleAdmin, sec.RoleModerator}, false},
		{"empty_required_set", sec.RoleAdmin, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.role.In(tt.required...))
		})
	}
}
