package identity

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// GenerateResetToken creates a random password-reset token. The raw
// value goes to the user; only its hash is stored.
func GenerateResetToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand failed")
	}
	return hex.EncodeToString(b)
}

// HashResetToken creates a SHA-256 hash of a raw token for
// storage and lookup.
func HashResetToken(raw string) []byte {
	h := sha256.Sum256([]byte(raw))
	return h[:]
}
