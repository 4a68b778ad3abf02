package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/choosyhq/sessiond/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testIssuer = "choosy-api"

func newTestSigningKey(t *testing.T) *jwtx.SigningKey {
	t.Helper()
	j, err := jwtx.GenerateSigningJWK()
	require.NoError(t, err)
	material, err := j.Encode()
	require.NoError(t, err)
	key, err := jwtx.ParseSigningJWK(material)
	require.NoError(t, err)
	return key
}

func TestSignAndVerify(t *testing.T) {
	key := newTestSigningKey(t)

	claims := jwtx.NewAccessClaims("sealed-blob", testIssuer, 5*time.Minute, time.Now().UTC())
	token, err := jwtx.Sign(key, claims)
	require.NoError(t, err)
	require.Len(t, strings.Split(token, "."), 3)

	parsed, err := jwtx.Verify(key, testIssuer, token)
	require.NoError(t, err)
	require.Equal(t, "sealed-blob", parsed.Subject)
	require.Equal(t, testIssuer, parsed.Issuer)
	require.NotEmpty(t, parsed.ID)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	key := newTestSigningKey(t)

	claims := jwtx.NewAccessClaims("sealed-blob", testIssuer, 5*time.Minute, time.Now().UTC())
	token, err := jwtx.Sign(key, claims)
	require.NoError(t, err)

	// Flip one character in the payload segment.
	parts := strings.Split(token, ".")
	payload := []byte(parts[1])
	if payload[3] == 'A' {
		payload[3] = 'B'
	} else {
		payload[3] = 'A'
	}
	parts[1] = string(payload)

	_, err = jwtx.Verify(key, testIssuer, strings.Join(parts, "."))
	require.ErrorIs(t, err, jwtx.ErrVerify)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	key := newTestSigningKey(t)

	claims := jwtx.NewAccessClaims("sealed-blob", testIssuer, 2*time.Second, time.Now().UTC().Add(-time.Minute))
	token, err := jwtx.Sign(key, claims)
	require.NoError(t, err)

	_, err = jwtx.Verify(key, testIssuer, token)
	require.ErrorIs(t, err, jwtx.ErrVerify)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	key := newTestSigningKey(t)

	claims := jwtx.NewAccessClaims("sealed-blob", "someone-else", 5*time.Minute, time.Now().UTC())
	token, err := jwtx.Sign(key, claims)
	require.NoError(t, err)

	_, err = jwtx.Verify(key, testIssuer, token)
	require.ErrorIs(t, err, jwtx.ErrVerify)
}

func TestVerifyRejectsUnknownKID(t *testing.T) {
	signer := newTestSigningKey(t)
	other := newTestSigningKey(t)

	claims := jwtx.NewAccessClaims("sealed-blob", testIssuer, 5*time.Minute, time.Now().UTC())
	token, err := jwtx.Sign(signer, claims)
	require.NoError(t, err)

	_, err = jwtx.Verify(other, testIssuer, token)
	require.ErrorIs(t, err, jwtx.ErrVerify)
}

func TestKeyringLazyAndCached(t *testing.T) {
	signJWK, err := jwtx.GenerateSigningJWK()
	require.NoError(t, err)
	signMaterial, err := signJWK.Encode()
	require.NoError(t, err)
	sealJWK, err := jwtx.GenerateSealJWK()
	require.NoError(t, err)
	sealMaterial, err := sealJWK.Encode()
	require.NoError(t, err)

	ring := jwtx.NewKeyring(signMaterial, sealMaterial)
	require.True(t, ring.Ready())

	k1, err := ring.SigningKey()
	require.NoError(t, err)
	k2, err := ring.SigningKey()
	require.NoError(t, err)
	require.Same(t, k1, k2)

	s, err := ring.SealKey()
	require.NoError(t, err)
	require.Len(t, s.Key, 32)
}

func TestKeyringMissingMaterial(t *testing.T) {
	ring := jwtx.NewKeyring("", "")
	require.False(t, ring.Ready())

	_, err := ring.SigningKey()
	require.ErrorIs(t, err, jwtx.ErrConfig)
	_, err = ring.SealKey()
	require.ErrorIs(t, err, jwtx.ErrConfig)
}

func TestKeyringMalformedMaterial(t *testing.T) {
	ring := jwtx.NewKeyring("!!!not-a-key", "also-not")
	_, err := ring.SigningKey()
	require.ErrorIs(t, err, jwtx.ErrConfig)
}

func TestPublicJWKSOmitsPrivateMaterial(t *testing.T) {
	key := newTestSigningKey(t)
	set := jwtx.PublicJWKS(key)
	require.Len(t, set.Keys, 1)
	require.Equal(t, key.KID, set.Keys[0].Kid)
	require.Empty(t, set.Keys[0].D)
	require.NotEmpty(t, set.Keys[0].X)
}
