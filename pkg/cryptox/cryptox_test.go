package cryptox_test

import (
	"crypto/rand"
	"testing"

	"github.com/choosyhq/sessiond/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestSealOpenRoundTrip(t *testing.T) {
	key := testKey(t)
	plaintext := []byte(`{"platform":"wx","subject":"abc123"}`)

	blob, err := cryptox.Seal(key, plaintext)
	require.NoError(t, err)
	require.NotEmpty(t, blob)

	opened, err := cryptox.Open(key, blob)
	require.NoError(t, err)
	require.Equal(t, plaintext, opened)
}

func TestSealProducesFreshNonces(t *testing.T) {
	key := testKey(t)
	a, err := cryptox.Seal(key, []byte("same input"))
	require.NoError(t, err)
	b, err := cryptox.Seal(key, []byte("same input"))
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestOpenRejectsTampering(t *testing.T) {
	key := testKey(t)
	blob, err := cryptox.Seal(key, []byte("payload"))
	require.NoError(t, err)

	mutated := []byte(blob)
	if mutated[len(mutated)-1] == 'A' {
		mutated[len(mutated)-1] = 'B'
	} else {
		mutated[len(mutated)-1] = 'A'
	}

	_, err = cryptox.Open(key, string(mutated))
	require.ErrorIs(t, err, cryptox.ErrOpen)
}

func TestOpenRejectsWrongKey(t *testing.T) {
	blob, err := cryptox.Seal(testKey(t), []byte("payload"))
	require.NoError(t, err)

	_, err = cryptox.Open(testKey(t), blob)
	require.ErrorIs(t, err, cryptox.ErrOpen)
}

func TestOpenRejectsGarbage(t *testing.T) {
	key := testKey(t)

	_, err := cryptox.Open(key, "!!not base64!!")
	require.ErrorIs(t, err, cryptox.ErrOpen)

	_, err = cryptox.Open(key, "c2hvcnQ") // decodes, but shorter than a nonce
	require.ErrorIs(t, err, cryptox.ErrOpen)
}

func TestGenerateBase62Token(t *testing.T) {
	a, err := cryptox.GenerateBase62Token(cryptox.TokenSize192)
	require.NoError(t, err)
	b, err := cryptox.GenerateBase62Token(cryptox.TokenSize192)
	require.NoError(t, err)

	require.NotEqual(t, a, b)
	// 192 bits is at most 33 base62 digits, almost always 32-33.
	require.LessOrEqual(t, len(a), 33)
	require.NotEmpty(t, a)

	_, err = cryptox.GenerateBase62Token(0)
	require.Error(t, err)
}

func TestFingerprintHex(t *testing.T) {
	fp := cryptox.FingerprintHex("13800000000")
	require.Len(t, fp, 64)
	require.Equal(t, fp, cryptox.FingerprintHex("13800000000"))
	require.NotEqual(t, fp, cryptox.FingerprintHex("13800000001"))
	// Known vector: sha256("abc")
	require.Equal(t,
		"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		cryptox.FingerprintHex("abc"))
}
