// Package jwtx handles the service's key material and the signed
// access-token wire format. Keys are supplied through configuration as
// base64url-encoded JWK JSON, the format `sessionctl genkeys` emits.
package jwtx

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/choosyhq/sessiond/pkg/encx"
)

// ErrConfig reports absent or malformed key material. It is fatal to
// whatever operation needed the key, but deliberately not checked at
// process start.
var ErrConfig = errors.New("jwtx: invalid key material")

// JWK is the subset of RFC 7517 this service reads and writes.
type JWK struct {
	Kty string `json:"kty"`
	Crv string `json:"crv,omitempty"`
	Kid string `json:"kid"`
	Use string `json:"use,omitempty"`
	Alg string `json:"alg,omitempty"`
	X   string `json:"x,omitempty"` // Ed25519 public key
	D   string `json:"d,omitempty"` // Ed25519 private seed
	K   string `json:"k,omitempty"` // symmetric key
}

// Encode renders the JWK the way configuration carries it:
// base64url(JSON), no padding.
func (j JWK) Encode() (string, error) {
	b, err := json.Marshal(j)
	if err != nil {
		return "", err
	}
	return encx.EncodeBase64URL(b), nil
}

// Public strips private material, leaving what a JWKS may publish.
func (j JWK) Public() JWK {
	j.D = ""
	j.K = ""
	return j
}

// SigningKey is a parsed Ed25519 keypair plus its key identifier.
type SigningKey struct {
	KID     string
	Private ed25519.PrivateKey
	Public  ed25519.PublicKey
}

// SealKey is a parsed 256-bit symmetric key plus its key identifier.
type SealKey struct {
	KID string
	Key []byte
}

func decodeJWK(material string) (JWK, error) {
	raw, err := encx.DecodeBase64URL(material)
	if err != nil {
		return JWK{}, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	var j JWK
	if err := json.Unmarshal(raw, &j); err != nil {
		return JWK{}, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if j.Kid == "" {
		return JWK{}, fmt.Errorf("%w: missing kid", ErrConfig)
	}
	return j, nil
}

// ParseSigningJWK parses an encoded OKP/Ed25519 JWK into a SigningKey.
func ParseSigningJWK(material string) (*SigningKey, error) {
	j, err := decodeJWK(material)
	if err != nil {
		return nil, err
	}
	if j.Kty != "OKP" || j.Crv != "Ed25519" {
		return nil, fmt.Errorf("%w: expected OKP/Ed25519 signing key, got %s/%s", ErrConfig, j.Kty, j.Crv)
	}

	seed, err := encx.DecodeBase64URL(j.D)
	if err != nil || len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: bad Ed25519 seed", ErrConfig)
	}

	priv := ed25519.NewKeyFromSeed(seed)
	return &SigningKey{
		KID:     j.Kid,
		Private: priv,
		Public:  priv.Public().(ed25519.PublicKey),
	}, nil
}

// ParseSealJWK parses an encoded oct JWK into a 256-bit SealKey.
func ParseSealJWK(material string) (*SealKey, error) {
	j, err := decodeJWK(material)
	if err != nil {
		return nil, err
	}
	if j.Kty != "oct" {
		return nil, fmt.Errorf("%w: expected oct seal key, got %s", ErrConfig, j.Kty)
	}

	key, err := encx.DecodeBase64URL(j.K)
	if err != nil || len(key) != 32 {
		return nil, fmt.Errorf("%w: seal key must be 32 bytes", ErrConfig)
	}
	return &SealKey{KID: j.Kid, Key: key}, nil
}

// GenerateSigningJWK mints a fresh Ed25519 signing JWK with a random kid.
func GenerateSigningJWK() (JWK, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return JWK{}, err
	}
	return JWK{
		Kty: "OKP",
		Crv: "Ed25519",
		Kid: newKID(),
		Use: "sig",
		Alg: "EdDSA",
		X:   encx.EncodeBase64URL(pub),
		D:   encx.EncodeBase64URL(priv.Seed()),
	}, nil
}

// GenerateSealJWK mints a fresh 256-bit symmetric JWK with a random kid.
func GenerateSealJWK() (JWK, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return JWK{}, err
	}
	return JWK{
		Kty: "oct",
		Kid: newKID(),
		Use: "enc",
		Alg: "A256GCM",
		K:   encx.EncodeBase64URL(key),
	}, nil
}

func newKID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return encx.EncodeBase64URL(b[:])
}
