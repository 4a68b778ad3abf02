package token

import (
	"errors"
	"time"

	"github.com/choosyhq/sessiond/internal/session/domain"
	"github.com/choosyhq/sessiond/pkg/jwtx"
)

// ErrUnauthenticated is the single failure every rejected access token
// collapses into. Callers get no hint whether the signature, expiry, or
// sealed subject was at fault.
var ErrUnauthenticated = errors.New("token: unauthenticated")

// AccessTokens issues and verifies the short-lived signed tokens
// clients present on every request. The subject claim is a sealed
// identity blob, so a verified token is self-contained.
type AccessTokens struct {
	Keys   *jwtx.Keyring
	Sealer *Sealer
	Issuer string
	TTL    time.Duration
}

// Issue signs a fresh access token whose subject is the already-sealed
// identity blob.
func (a *AccessTokens) Issue(sealed string) (string, error) {
	key, err := a.Keys.SigningKey()
	if err != nil {
		return "", err
	}

	claims := jwtx.NewAccessClaims(sealed, a.Issuer, a.TTL, time.Now().UTC())
	return jwtx.Sign(key, claims)
}

// Verify checks the signature, issuer, and expiry of raw, then unseals
// the subject. All verification failures collapse into
// ErrUnauthenticated; key configuration problems pass through as-is.
func (a *AccessTokens) Verify(raw string) (*domain.VerifiedIdentity, error) {
	key, err := a.Keys.SigningKey()
	if err != nil {
		return nil, err
	}

	claims, err := jwtx.Verify(key, a.Issuer, raw)
	if err != nil {
		if errors.Is(err, jwtx.ErrConfig) {
			return nil, err
		}
		return nil, ErrUnauthenticated
	}

	id, err := a.Sealer.Unseal(claims.Subject)
	if err != nil {
		if errors.Is(err, jwtx.ErrConfig) {
			return nil, err
		}
		return nil, ErrUnauthenticated
	}

	verified := &domain.VerifiedIdentity{
		Identity:   id,
		SubjectKey: id.SubjectKey(),
		JTI:        claims.ID,
	}
	if claims.IssuedAt != nil {
		verified.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		verified.ExpiresAt = claims.ExpiresAt.Time
	}
	return verified, nil
}
