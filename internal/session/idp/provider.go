// Package idp abstracts the external identity providers a login can go
// through. A provider exchanges client-supplied credentials for a
// verified identity; everything after that point is provider-agnostic.
package idp

import (
	"context"
	"errors"

	"github.com/choosyhq/sessiond/internal/session/domain"
)

var (
	// ErrUnknownProvider reports a login naming a platform no provider
	// is registered for.
	ErrUnknownProvider = errors.New("idp: unknown provider")

	// ErrExchange reports credentials the provider rejected.
	ErrExchange = errors.New("idp: credential exchange failed")
)

// Credentials is what a client submits to log in. Which fields matter
// depends on the provider.
type Credentials struct {
	// LoginCode proves who the client is to the platform.
	LoginCode string `json:"login_code"`

	// PhoneCode authorizes release of the client's phone number.
	// Providers that learn the contact from LoginCode alone ignore it.
	PhoneCode string `json:"phone_code,omitempty"`
}

// Provider exchanges platform credentials for a verified identity.
type Provider interface {
	// Name is the platform tag, e.g. "wx". It becomes the identity's
	// Platform field and the refresh-token prefix.
	Name() string

	// Exchange verifies creds with the platform and returns the
	// resulting identity. Rejected credentials come back wrapping
	// ErrExchange.
	Exchange(ctx context.Context, creds Credentials) (domain.Identity, error)
}
