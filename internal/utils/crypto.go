package utils

import (
	"fmt"                                // Error wrapping
	"jacket_marketplace/internal/domain" // Error taxonomy

	"github.com/fernet/fernet-go" // Fernet tokens
)

// CryptoHelper encrypts payout credentials with the process-wide key.
// The same key protects every user's credential.
type CryptoHelper struct {
	key *fernet.Key
}

// NewCryptoHelper parses a url-safe base64 Fernet key
func NewCryptoHelper(encodedKey string) (*CryptoHelper, error) {
	key, err := fernet.DecodeKey(encodedKey) // Decode the configured key
	if err != nil {
		return nil, fmt.Errorf("invalid decrypt key: %w", err)
	}
	return &CryptoHelper{key: key}, nil
}

// Encrypt returns the Fernet token for plaintext
func (h *CryptoHelper) Encrypt(plaintext string) (string, error) {
	tok, err := fernet.EncryptAndSign([]byte(plaintext), h.key)
	if err != nil {
		return "", fmt.Errorf("encrypt: %w", err)
	}
	return string(tok), nil
}

// Decrypt verifies and opens a token produced by Encrypt. Tokens never expire.
func (h *CryptoHelper) Decrypt(ciphertext string) (string, error) {
	msg := fernet.VerifyAndDecrypt([]byte(ciphertext), -1, []*fernet.Key{h.key})
	if msg == nil {
		return "", domain.ErrDecryption // Malformed token or wrong key
	}
	return string(msg), nil
}
