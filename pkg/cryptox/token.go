package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/choosyhq/sessiond/pkg/encx"
)

// TokenSize192 is the entropy of a refresh-token body in bytes.
// 192 bits renders to at most 33 base62 digits.
const TokenSize192 = 24

// GenerateBase62Token draws size cryptographically random bytes and
// renders them in base62. Inputs with leading zero bytes produce a
// shorter string; the entropy is the same either way.
func GenerateBase62Token(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("cryptox: token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("cryptox: random token: %w", err)
	}
	return encx.EncodeBase62(buf), nil
}

// FingerprintHex returns the SHA-256 of s as lowercase hex (64 chars).
// Deterministic and one-way: safe to use as a lookup key for data whose
// plaintext must never be stored.
func FingerprintHex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
