// Package domain holds the core types the session service passes
// between its layers.
package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/choosyhq/sessiond/pkg/cryptox"
)

// ErrInvalidIdentity reports an identity missing a required field.
var ErrInvalidIdentity = errors.New("domain: invalid identity")

// Identity is the verified external identity a provider hands back
// after a successful credential exchange. It travels inside tokens only
// in sealed form; the contact field in particular never appears in
// plaintext outside this process.
type Identity struct {
	Platform string `json:"platform"`
	Subject  string `json:"subject"`
	Contact  string `json:"contact"`
	Name     string `json:"name,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// Validate checks the fields every downstream consumer relies on.
func (id Identity) Validate() error {
	switch {
	case id.Platform == "":
		return fmt.Errorf("%w: missing platform", ErrInvalidIdentity)
	case id.Subject == "":
		return fmt.Errorf("%w: missing subject", ErrInvalidIdentity)
	case id.Contact == "":
		return fmt.Errorf("%w: missing contact", ErrInvalidIdentity)
	}
	return nil
}

// SubjectKey derives the stable partition key for this identity: the
// SHA-256 of the contact as lowercase hex. All sessions of one person
// share it, which is what quota enforcement and bulk revocation key on.
func (id Identity) SubjectKey() string {
	return cryptox.FingerprintHex(id.Contact)
}

// VerifiedIdentity is an Identity recovered from a valid access token,
// along with the token metadata callers may want.
type VerifiedIdentity struct {
	Identity

	SubjectKey string
	JTI        string
	IssuedAt   time.Time
	ExpiresAt  time.Time
}
