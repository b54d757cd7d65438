// Copyright (c) 2026 Arcade. All rights reserved.
// Author: platform@arcade.gg

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcadehq/arcade/internal/platform/sec"
)

/*
TestHashPassword_RoundTrip verifies that a hashed password validates against
the original plaintext and rejects everything else.
*/
func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := sec.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, sec.CheckPasswordHash("correct horse battery staple", hash))
	assert.False(t, sec.CheckPasswordHash("correct horse battery", hash))
	assert.False(t, sec.CheckPasswordHash("", hash))
}

/*
TestHashPassword_SaltedHashesDiffer verifies that hashing the same password
twice yields different hashes (bcrypt embeds a random salt).
*/
func TestHashPassword_SaltedHashesDiffer(t *testing.T) {
	first, err := sec.HashPassword("same-password")
	require.NoError(t, err)

	second, err := sec.HashPassword("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, sec.CheckPasswordHash("same-password", first))
	assert.True(t, sec.CheckPasswordHash("same-password", second))
}

/*
TestCheckPasswordHash_GarbageHash verifies a non-bcrypt string never validates.
*/
func TestCheckPasswordHash_GarbageHash(t *testing.T) {
	assert.False(t, sec.CheckPasswordHash("anything", "not-a-bcrypt-hash"))
	assert.False(t, sec.CheckPasswordHash("anything", ""))
}
