package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cryptoKey = []byte("0123456789abcdef0123456789abcdef")

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	sealed, err := Encrypt([]byte("platform-access-token"), cryptoKey)
	require.NoError(t, err)
	assert.NotContains(t, sealed, "platform-access-token")

	plain, err := Decrypt(sealed, cryptoKey)
	require.NoError(t, err)
	assert.Equal(t, "platform-access-token", plain)
}

func TestEncrypt_NonceVariesPerCall(t *testing.T) {
	a, err := Encrypt([]byte("same input"), cryptoKey)
	require.NoError(t, err)
	b, err := Encrypt([]byte("same input"), cryptoKey)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecrypt_WrongKeyFails(t *testing.T) {
	sealed, err := Encrypt([]byte("secret"), cryptoKey)
	require.NoError(t, err)

	_, err = Decrypt(sealed, []byte("ffffffffffffffffffffffffffffffff"))
	assert.Error(t, err)
}

func TestDecrypt_RejectsTruncatedPayload(t *testing.T) {
	_, err := Decrypt("c2hvcnQ=", cryptoKey)
	assert.Error(t, err)
}
