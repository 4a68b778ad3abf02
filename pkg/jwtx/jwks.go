package jwtx

import "github.com/choosyhq/sessiond/pkg/encx"

// JWKS is the document served from /.well-known/jwks.json.
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// PublicJWKS publishes the signing key's public half. One active key
// today; the slice form keeps the wire format stable when rotation adds
// more.
func PublicJWKS(key *SigningKey) JWKS {
	return JWKS{Keys: []JWK{{
		Kty: "OKP",
		Crv: "Ed25519",
		Kid: key.KID,
		Use: "sig",
		Alg: "EdDSA",
		X:   encx.EncodeBase64URL(key.Public),
	}}}
}
