package utils

import (
	"crypto/sha256"   // Content hash
	"encoding/base64" // Photo payload encoding
	"encoding/hex"    // Hash formatting
	"fmt"             // Error wrapping
	"strings"         // Extension cleanup

	"jacket_marketplace/internal/domain" // Error taxonomy
)

// DecodePhoto decodes a base64 photo payload
func DecodePhoto(encoded string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(data) == 0 {
		return nil, fmt.Errorf("%w: photo is not valid base64", domain.ErrValidation)
	}
	return data, nil
}

// HashPhoto returns the hex sha256 of the photo bytes
func HashPhoto(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// PhotoKeyFromURL returns the object key, i.e. the last path segment of url
func PhotoKeyFromURL(url string) string {
	return url[strings.LastIndex(url, "/")+1:]
}

// NormalizeExtension strips a leading dot and lowercases the extension
func NormalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
