// Package token turns verified identities into credentials and back:
// AEAD-sealed identity blobs and EdDSA-signed access tokens.
package token

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/choosyhq/sessiond/internal/session/domain"
	"github.com/choosyhq/sessiond/pkg/cryptox"
	"github.com/choosyhq/sessiond/pkg/jwtx"
)

// ErrIdentity reports a sealed blob that did not open to a usable
// identity. Callers treat the blob as untrusted input.
var ErrIdentity = errors.New("token: cannot recover identity")

// Sealer encrypts identities into opaque blobs and recovers them.
// The blob is the only form an identity takes outside this process.
type Sealer struct {
	Keys *jwtx.Keyring
}

// Seal serializes id and encrypts it under the seal key. The output is
// URL-safe and can be embedded directly as a JWT subject claim.
func (s *Sealer) Seal(id domain.Identity) (string, error) {
	if err := id.Validate(); err != nil {
		return "", err
	}

	key, err := s.Keys.SealKey()
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(id)
	if err != nil {
		return "", fmt.Errorf("token: marshal identity: %w", err)
	}
	return cryptox.Seal(key.Key, payload)
}

// Unseal reverses Seal. Tampered, truncated, or foreign blobs come back
// as ErrIdentity; a missing seal key surfaces as a config error instead
// so operators can tell the two apart.
func (s *Sealer) Unseal(blob string) (domain.Identity, error) {
	key, err := s.Keys.SealKey()
	if err != nil {
		return domain.Identity{}, err
	}

	payload, err := cryptox.Open(key.Key, blob)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", ErrIdentity, err)
	}

	var id domain.Identity
	if err := json.Unmarshal(payload, &id); err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", ErrIdentity, err)
	}
	if err := id.Validate(); err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", ErrIdentity, err)
	}
	return id, nil
}
