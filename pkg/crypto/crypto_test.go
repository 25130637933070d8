package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Abcdef1!", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "Abcdef1!", hash)

	assert.True(t, CheckPassword("Abcdef1!", hash))
	assert.False(t, CheckPassword("Abcdef1?", hash))
	assert.False(t, CheckPassword("", hash))
}

func TestHashPassword_InvalidCostFallsBack(t *testing.T) {
	hash, err := HashPassword("Abcdef1!", 99)
	require.NoError(t, err)
	assert.True(t, CheckPassword("Abcdef1!", hash))
}
