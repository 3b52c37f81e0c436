package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// Token size constants (in bytes before encoding).
const (
	// TokenSize128 provides 128 bits of entropy.
	TokenSize128 = 16
	// TokenSize256 provides 256 bits of entropy. Used for reset and
	// verification tokens.
	TokenSize256 = 32
)

// GenerateToken creates a cryptographically secure random token of the
// specified byte length, hex encoded (64 chars for TokenSize256) so it can be
// pasted into a URL path without escaping.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return hex.EncodeToString(buf), nil
}

// DigestToken returns the hex SHA-256 digest of a one-time token. Only the
// digest is ever persisted.
func DigestToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// FingerprintToken returns a deterministic base64url SHA-256 fingerprint of a
// bearer token (43 chars). Used as the storage key for JWTs so the signed
// token itself never reaches the database.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// DigestMatches reports whether the digest of candidate equals storedDigest,
// in constant time.
func DigestMatches(candidate, storedDigest string) bool {
	if storedDigest == "" {
		return false
	}
	got := DigestToken(candidate)
	return subtle.ConstantTimeCompare([]byte(got), []byte(storedDigest)) == 1
}
