// Package denylist blocks access tokens before their natural expiry.
// Logout-all adds the caller's JTI here so the token that ordered the
// revocation stops working immediately instead of at its exp.
package denylist

import (
	"context"
	"time"
)

// Denylist tracks revoked token IDs until they would have expired
// anyway.
type Denylist interface {
	// Add blocks jti for ttl. A non-positive ttl is a no-op since the
	// token is already dead.
	Add(ctx context.Context, jti string, ttl time.Duration) error

	// Contains reports whether jti is currently blocked.
	Contains(ctx context.Context, jti string) (bool, error)
}

// Noop returns a Denylist that blocks nothing. Used when no Redis is
// configured; revoked access tokens then remain valid until exp, which
// the short access TTL bounds.
func Noop() Denylist { return noop{} }

type noop struct{}

func (noop) Add(context.Context, string, time.Duration) error { return nil }

func (noop) Contains(context.Context, string) (bool, error) { return false, nil }
