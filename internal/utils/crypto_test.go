package utils

import (
	"testing"

	"jacket_marketplace/internal/domain"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/fernet/fernet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKey(t *testing.T) string {
	t.Helper()
	var k fernet.Key
	require.NoError(t, k.Generate())
	return k.Encode()
}

func TestCryptoHelper_RoundTrip(t *testing.T) {
	h, err := NewCryptoHelper(newKey(t))
	require.NoError(t, err)

	inputs := []string{"", "8db48ad2-7b7c-44d1-bcf6-fc300481c851", "ünïcødé ключ", gofakeit.UUID(), gofakeit.LetterN(200)}
	for _, in := range inputs {
		enc, err := h.Encrypt(in)
		require.NoError(t, err)
		assert.NotEqual(t, in, enc)

		dec, err := h.Decrypt(enc)
		require.NoError(t, err)
		assert.Equal(t, in, dec)
	}
}

func TestCryptoHelper_WrongKey(t *testing.T) {
	a, err := NewCryptoHelper(newKey(t))
	require.NoError(t, err)
	b, err := NewCryptoHelper(newKey(t))
	require.NoError(t, err)

	enc, err := a.Encrypt("secret")
	require.NoError(t, err)

	_, err = b.Decrypt(enc)
	assert.ErrorIs(t, err, domain.ErrDecryption)
}

func TestCryptoHelper_Malformed(t *testing.T) {
	h, err := NewCryptoHelper(newKey(t))
	require.NoError(t, err)

	for _, bad := range []string{"", "not-a-token", "gAAAAA"} {
		_, err := h.Decrypt(bad)
		assert.ErrorIs(t, err, domain.ErrDecryption, bad)
	}
}

func TestNewCryptoHelper_InvalidKey(t *testing.T) {
	_, err := NewCryptoHelper("short")
	assert.Error(t, err)
}
