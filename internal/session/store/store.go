// Package store defines the data access interface for session state.
// Concrete drivers (sqlite, postgres) live under drivers/.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/choosyhq/sessiond/internal/session/domain"
)

var ErrNotFound = errors.New("store: not found")

// Store is the root data access interface. It exposes sub-repositories
// to keep concerns tidy and testable, and transaction helpers for the
// multi-step operations that must be atomic (issue-with-eviction,
// refresh rotation).
type Store interface {
	RefreshTokens() RefreshTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. fn returning an error
	// rolls back; nil commits. Prefer this over Tx directly.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. Same repos, plus Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type RefreshTokens interface {
	// Create stores a new refresh token record.
	Create(ctx context.Context, t domain.RefreshToken) error

	// Consume atomically deletes the record for the given opaque token
	// and returns it. A second Consume of the same token returns
	// ErrNotFound, which is what makes the token single-use.
	Consume(ctx context.Context, token string) (domain.RefreshToken, error)

	// Revoke deletes the record for the given opaque token. Reports
	// whether a record existed; unknown tokens are not an error.
	Revoke(ctx context.Context, token string) (bool, error)

	// RevokeAllForSubject deletes every record sharing subjectKey and
	// returns how many were removed.
	RevokeAllForSubject(ctx context.Context, subjectKey string) (int64, error)

	// EvictOverQuota deletes all but the keep newest records for
	// subjectKey and returns how many were removed. Run inside the
	// same transaction as the Create it makes room for.
	EvictOverQuota(ctx context.Context, subjectKey string, keep int) (int64, error)

	// CountForSubject returns the number of live records for subjectKey.
	CountForSubject(ctx context.Context, subjectKey string) (int, error)

	// DeleteExpired removes records whose expiry is at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
