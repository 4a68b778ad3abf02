// Package cryptox wraps the small set of cryptographic primitives the
// session service needs: AEAD sealing, random opaque tokens, and
// deterministic fingerprints.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/choosyhq/sessiond/pkg/encx"
)

// ErrOpen reports a sealed blob that failed to authenticate or decode.
// Treat the input as untrusted, not the caller as buggy.
var ErrOpen = errors.New("cryptox: cannot open sealed data")

// Seal encrypts plaintext with AES-256-GCM under a fresh random 96-bit
// nonce and returns base64url(nonce || ciphertext || tag).
func Seal(key, plaintext []byte) (string, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("cryptox: nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, plaintext, nil)
	return encx.EncodeBase64URL(sealed), nil
}

// Open reverses Seal. Any malformed input, wrong key, or failed
// authentication tag comes back as ErrOpen.
func Open(key []byte, blob string) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	raw, err := encx.DecodeBase64URL(blob)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}
	if len(raw) < gcm.NonceSize() {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrOpen)
	}

	nonce, ciphertext := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cryptox: cipher: %w", err)
	}
	return cipher.NewGCM(block)
}
