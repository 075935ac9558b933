package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateValidateToken_RoundTrip(t *testing.T) {
	token, err := GenerateToken("session-secret", "owner-1", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken("session-secret", token)
	require.NoError(t, err)
	assert.Equal(t, "owner-1", claims.OwnerID)
	assert.Equal(t, "reelflow", claims.Issuer)
}

func TestValidateToken_WrongKeyFails(t *testing.T) {
	token, err := GenerateToken("session-secret", "owner-1", time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken("other-secret", token)
	assert.Error(t, err)
}

func TestValidateToken_ExpiredFails(t *testing.T) {
	token, err := GenerateToken("session-secret", "owner-1", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken("session-secret", token)
	assert.Error(t, err)
}
