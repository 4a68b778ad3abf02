package jwtx

import (
	"crypto/rand"
	"time"

	"github.com/choosyhq/sessiond/pkg/encx"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the access-token claims. The subject claim carries the
// sealed identity blob, so no extra custom fields are needed; keeping
// the type lets callers stay decoupled from the jwt library.
type Claims struct {
	jwt.RegisteredClaims
}

// NewAccessClaims builds the standard claim set for a fresh access token.
func NewAccessClaims(subject, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
	}
}

// NewJTI returns a random 128-bit token identifier, base64url-encoded.
// Unique per token; reserved for a future revocation list.
func NewJTI() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return encx.EncodeBase64URL(b[:])
}
