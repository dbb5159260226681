package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateSessionToken generates an opaque session token: 32 random bytes,
// hex encoded (64 characters). The token carries no claims; it is only a key
// into the server-side session store.
func GenerateSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
