package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "correct horse battery staple", hash, "hash must not be the plain password")

	ok, err := VerifyPassword(hash, "correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyPasswordMismatchIsNotAnError(t *testing.T) {
	hash, err := HashPassword("the right password!", bcrypt.MinCost)
	require.NoError(t, err)

	ok, err := VerifyPassword(hash, "the wrong password!")
	require.NoError(t, err, "a mismatch is a normal outcome, not a failure")
	assert.False(t, ok)
}

func TestVerifyPasswordMalformedDigest(t *testing.T) {
	ok, err := VerifyPassword("not-a-bcrypt-digest", "whatever")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestHashPasswordRejectsAbsurdCost(t *testing.T) {
	_, err := HashPassword("anything", bcrypt.MaxCost+1)
	assert.Error(t, err)
}
