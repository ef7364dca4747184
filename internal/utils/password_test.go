package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/poolforyou/poolforyou-api/internal/utils"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	passwords := []string{"correct horse battery", "ñandú-2024", "12345678", "p@ss with spaces"}

	for _, pw := range passwords {
		t.Run(pw, func(t *testing.T) {
			hash, err := utils.HashPassword(pw, bcrypt.MinCost)
			require.NoError(t, err)
			assert.NotEqual(t, pw, hash)

			assert.True(t, utils.VerifyPassword(hash, pw))
			assert.False(t, utils.VerifyPassword(hash, pw+"x"))
			assert.False(t, utils.VerifyPassword(hash, ""))
		})
	}
}

func TestHashPasswordSalts(t *testing.T) {
	a, err := utils.HashPassword("same-password", bcrypt.MinCost)
	require.NoError(t, err)
	b, err := utils.HashPassword("same-password", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, utils.VerifyPassword(a, "same-password"))
	assert.True(t, utils.VerifyPassword(b, "same-password"))
}

func TestComparePassword(t *testing.T) {
	hash, err := utils.HashPassword("secret-pass", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NoError(t, utils.ComparePassword(hash, "secret-pass"))
	assert.ErrorIs(t, utils.ComparePassword(hash, "other-pass"), utils.ErrPasswordMismatch)

	err = utils.ComparePassword("not-a-bcrypt-hash", "secret-pass")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, utils.ErrPasswordMismatch)
}
