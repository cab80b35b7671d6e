package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// NewSessionToken returns a random opaque session token for the cookie value.
// Only its hash is stored server-side.
func NewSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// HashSessionToken returns a SHA-256 hash of the session token string, hex-encoded.
// Used for storing and looking up sessions without storing the raw token.
func HashSessionToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// SessionTokenHashEqual performs constant-time comparison of the provided token's
// hash with the stored hash. Returns true only if they match.
func SessionTokenHashEqual(providedToken, storedHash string) bool {
	providedHash := HashSessionToken(providedToken)
	return subtle.ConstantTimeCompare([]byte(providedHash), []byte(storedHash)) == 1
}
