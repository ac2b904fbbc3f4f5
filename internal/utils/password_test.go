package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.True(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("not-a-hash", "s3cret"))
}

func TestHashPassword_ClampsCost(t *testing.T) {
	// Out-of-range costs fall back to the bcrypt default instead of failing.
	hash, err := HashPassword("s3cret", 99)
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "s3cret"))
}
