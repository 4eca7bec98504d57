// AngelaMos | 2026
// security_test.go

package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=1,p=4$"))

	ok, err := VerifyPassword("secret123", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPassword_UniqueSalt(t *testing.T) {
	a, err := HashPassword("same")
	require.NoError(t, err)
	b, err := HashPassword("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	_, err := VerifyPassword("x", "not-a-hash")
	assert.Error(t, err)

	_, err = VerifyPassword("x", "$bcrypt$v=19$m=1,t=1,p=1$aa$bb")
	assert.Error(t, err)

	_, err = VerifyPassword("x", "$argon2id$v=19$m=1,t=1,p=1$!!$bb")
	assert.ErrorIs(t, err, errMalformedHash)
}

func TestVerifyPasswordWithRehash_OutdatedParams(t *testing.T) {
	current, err := HashPassword("pw1234")
	require.NoError(t, err)

	ok, newHash, err := VerifyPasswordWithRehash("pw1234", current)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, newHash)

	outdated := strings.Replace(current, "t=1", "t=2", 1)
	ok, _, err = VerifyPasswordWithRehash("pw1234", outdated)
	require.NoError(t, err)
	assert.False(t, ok, "hash was derived with t=1 so t=2 cannot verify")

	parsedOutdated, err := parsePasswordHash(outdated)
	require.NoError(t, err)
	assert.True(t, parsedOutdated.outdated())

	parsedCurrent, err := parsePasswordHash(current)
	require.NoError(t, err)
	assert.False(t, parsedCurrent.outdated())
	assert.Equal(t, DefaultPasswordParams, parsedCurrent.params)
}

func TestVerifyPasswordWithRehash_UpgradesWeakerHash(t *testing.T) {
	weak := PasswordParams{Memory: 8 * 1024, Time: 1, Threads: 1, KeyLen: 32, SaltLen: 16}
	salt := []byte("0123456789abcdef")
	stored := passwordHash{params: weak, salt: salt, key: derive("pw1234", salt, weak)}.String()

	ok, upgraded, err := VerifyPasswordWithRehash("pw1234", stored)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NotEmpty(t, upgraded)
	assert.True(t, strings.HasPrefix(upgraded, "$argon2id$v=19$m=65536,t=1,p=4$"))

	ok, err = VerifyPassword("pw1234", upgraded)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyPasswordTimingSafe_MissingAccount(t *testing.T) {
	ok, newHash, err := VerifyPasswordTimingSafe("anything", nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, newHash)

	empty := ""
	ok, _, err = VerifyPasswordTimingSafe("anything", &empty)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPasswordTimingSafe_ExistingAccount(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	ok, _, err := VerifyPasswordTimingSafe("correct horse", &hash)
	require.NoError(t, err)
	assert.True(t, ok)
}
