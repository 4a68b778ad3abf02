package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrVerify is the single failure mode Verify exposes. Callers get no
// detail about which check failed.
var ErrVerify = errors.New("jwtx: token verification failed")

// Sign serializes claims into a compact EdDSA-signed token. The active
// key's identifier goes into the header so verifiers can select the
// right public key once more than one is in play.
func Sign(key *SigningKey, claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	t.Header["kid"] = key.KID
	return t.SignedString(key.Private)
}

// Verify parses and validates a compact token: EdDSA signature against
// the key selected by the kid header, expiry, and issuer. Every failure
// collapses into ErrVerify.
func Verify(key *SigningKey, issuer, tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("missing kid header")
		}
		if kid != key.KID {
			return nil, fmt.Errorf("unknown kid %q", kid)
		}
		return key.Public, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVerify, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrVerify
	}
	return claims, nil
}
