package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/choosyhq/sessiond/internal/session/domain"
	"github.com/choosyhq/sessiond/internal/session/store"
	"github.com/choosyhq/sessiond/internal/session/store/drivers/sqlite"
	"github.com/choosyhq/sessiond/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())
	return s
}

func newRecord(subjectKey, token string, ttl time.Duration) domain.RefreshToken {
	now := time.Now().UTC()
	return domain.RefreshToken{
		ID:             idx.New(),
		SubjectKey:     subjectKey,
		Token:          token,
		SealedIdentity: "sealed-blob",
		ExpiresAt:      now.Add(ttl),
	}
}

func TestConsumeIsSingleUse(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := newRecord("subject-a", "wx:token-1", time.Hour)
	require.NoError(t, s.RefreshTokens().Create(ctx, rec))

	got, err := s.RefreshTokens().Consume(ctx, "wx:token-1")
	require.NoError(t, err)
	require.Equal(t, rec.ID, got.ID)
	require.Equal(t, "subject-a", got.SubjectKey)
	require.Equal(t, "sealed-blob", got.SealedIdentity)

	_, err = s.RefreshTokens().Consume(ctx, "wx:token-1")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestConsumeUnknownToken(t *testing.T) {
	s := newTestStore(t)
	_, err := s.RefreshTokens().Consume(context.Background(), "never-issued")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRevoke(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RefreshTokens().Create(ctx, newRecord("subject-a", "wx:token-1", time.Hour)))

	revoked, err := s.RefreshTokens().Revoke(ctx, "wx:token-1")
	require.NoError(t, err)
	require.True(t, revoked)

	// Revoking again reports nothing removed, but no error.
	revoked, err = s.RefreshTokens().Revoke(ctx, "wx:token-1")
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestRevokeAllForSubject(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := range 3 {
		require.NoError(t, s.RefreshTokens().Create(ctx,
			newRecord("subject-a", fmt.Sprintf("wx:a-%d", i), time.Hour)))
	}
	require.NoError(t, s.RefreshTokens().Create(ctx, newRecord("subject-b", "wx:b-0", time.Hour)))

	n, err := s.RefreshTokens().RevokeAllForSubject(ctx, "subject-a")
	require.NoError(t, err)
	require.EqualValues(t, 3, n)

	// The other subject's session survives.
	count, err := s.RefreshTokens().CountForSubject(ctx, "subject-b")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestEvictOverQuotaKeepsNewest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Creation timestamps come from the wall clock; space them out so
	// ordering is unambiguous.
	for i := range 5 {
		require.NoError(t, s.RefreshTokens().Create(ctx,
			newRecord("subject-a", fmt.Sprintf("wx:a-%d", i), time.Hour)))
		time.Sleep(5 * time.Millisecond)
	}

	n, err := s.RefreshTokens().EvictOverQuota(ctx, "subject-a", 2)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)

	count, err := s.RefreshTokens().CountForSubject(ctx, "subject-a")
	require.NoError(t, err)
	require.Equal(t, 2, count)

	// The two newest survive.
	_, err = s.RefreshTokens().Consume(ctx, "wx:a-4")
	require.NoError(t, err)
	_, err = s.RefreshTokens().Consume(ctx, "wx:a-3")
	require.NoError(t, err)
}

func TestEvictOverQuotaUnderLimitIsNoop(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RefreshTokens().Create(ctx, newRecord("subject-a", "wx:a-0", time.Hour)))

	n, err := s.RefreshTokens().EvictOverQuota(ctx, "subject-a", 9)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestDeleteExpired(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RefreshTokens().Create(ctx, newRecord("subject-a", "wx:live", time.Hour)))
	require.NoError(t, s.RefreshTokens().Create(ctx, newRecord("subject-a", "wx:dead", -time.Hour)))

	n, err := s.RefreshTokens().DeleteExpired(ctx, time.Now().UTC())
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	_, err = s.RefreshTokens().Consume(ctx, "wx:live")
	require.NoError(t, err)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.RefreshTokens().Create(ctx, newRecord("subject-a", "wx:tx", time.Hour)); err != nil {
			return err
		}
		return fmt.Errorf("boom")
	})
	require.Error(t, err)

	_, err = s.RefreshTokens().Consume(ctx, "wx:tx")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTxCommits(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WithTx(ctx, func(tx store.Tx) error {
		return tx.RefreshTokens().Create(ctx, newRecord("subject-a", "wx:tx", time.Hour))
	}))

	_, err := s.RefreshTokens().Consume(ctx, "wx:tx")
	require.NoError(t, err)
}
