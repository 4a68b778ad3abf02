package jwtx

import "sync"

// Keyring owns the process's key material: the Ed25519 signing keypair
// and the symmetric seal key. Each key is parsed at most once, on first
// use, and cached read-only for the process lifetime. A Keyring built
// from bad material constructs fine; the error surfaces from the first
// cryptographic operation that needs the key.
type Keyring struct {
	signing func() (*SigningKey, error)
	seal    func() (*SealKey, error)
}

// NewKeyring captures the raw configured material without parsing it.
func NewKeyring(signMaterial, sealMaterial string) *Keyring {
	return &Keyring{
		signing: sync.OnceValues(func() (*SigningKey, error) {
			if signMaterial == "" {
				return nil, missingErr("SIGN_KEY")
			}
			return ParseSigningJWK(signMaterial)
		}),
		seal: sync.OnceValues(func() (*SealKey, error) {
			if sealMaterial == "" {
				return nil, missingErr("ENC_KEY")
			}
			return ParseSealJWK(sealMaterial)
		}),
	}
}

// SigningKey returns the cached signing keypair, parsing it on first call.
func (k *Keyring) SigningKey() (*SigningKey, error) { return k.signing() }

// SealKey returns the cached seal key, parsing it on first call.
func (k *Keyring) SealKey() (*SealKey, error) { return k.seal() }

// Ready reports whether both keys parse. Used by readiness checks.
func (k *Keyring) Ready() bool {
	if _, err := k.signing(); err != nil {
		return false
	}
	_, err := k.seal()
	return err == nil
}

func missingErr(name string) error {
	return &missingKeyError{name: name}
}

type missingKeyError struct{ name string }

func (e *missingKeyError) Error() string {
	return "jwtx: " + e.name + " is not configured (run `sessionctl genkeys` and set it)"
}

func (e *missingKeyError) Unwrap() error { return ErrConfig }
