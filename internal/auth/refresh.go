package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// refreshSecretBytes is the entropy of each refresh token secret. The client
// receives the hex encoding (80 characters).
const refreshSecretBytes = 40

// NewRefreshSecret generates an opaque refresh token secret. The raw value is
// sent to the client once; only its digest is ever persisted.
func NewRefreshSecret() (string, error) {
	buf := make([]byte, refreshSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate refresh secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashRefreshSecret returns the hex-encoded SHA-256 digest of a refresh
// secret. Lookups and storage always use the digest, so a database leak does
// not expose usable tokens.
func HashRefreshSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
