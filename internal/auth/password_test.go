package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	first, err := HashPassword("Secret123", bcrypt.MinCost)
	require.NoError(t, err)
	second, err := HashPassword("Secret123", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, "Secret123", first)
	assert.NotEqual(t, first, second, "hashes must be salted per record")

	assert.NoError(t, ComparePassword(first, "Secret123"))
	assert.ErrorIs(t, ComparePassword(first, "Secret124"), bcrypt.ErrMismatchedHashAndPassword)
}

func TestHashPasswordCost(t *testing.T) {
	hash, err := HashPassword("Secret123", 10)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, 10, cost)
}
