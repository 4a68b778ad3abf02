package postgres

import (
	"context"
	"time"

	"github.com/choosyhq/sessiond/internal/session/domain"
	"github.com/choosyhq/sessiond/pkg/idx"
)

type refreshTokensRepo struct {
	db dbtx
}

const refreshTokenColumns = `id, subject_key, token, sealed_identity, expires_at, created_at, updated_at`

func (r *refreshTokensRepo) Create(ctx context.Context, t domain.RefreshToken) error {
	now := time.Now().UTC()
	_, err := r.db.Exec(ctx, `
		INSERT INTO refresh_tokens (id, subject_key, token, sealed_identity, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID.String(), t.SubjectKey, t.Token, t.SealedIdentity, t.ExpiresAt.UTC(), now, now,
	)
	return err
}

// Consume deletes and returns the record in one statement, so two
// concurrent consumers of the same token cannot both win.
func (r *refreshTokensRepo) Consume(ctx context.Context, token string) (domain.RefreshToken, error) {
	row := r.db.QueryRow(ctx, `
		DELETE FROM refresh_tokens WHERE token = $1
		RETURNING `+refreshTokenColumns,
		token,
	)
	return scanRefreshToken(row)
}

func (r *refreshTokensRepo) Revoke(ctx context.Context, token string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *refreshTokensRepo) RevokeAllForSubject(ctx context.Context, subjectKey string) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM refresh_tokens WHERE subject_key = $1`, subjectKey)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *refreshTokensRepo) EvictOverQuota(ctx context.Context, subjectKey string, keep int) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM refresh_tokens
		WHERE subject_key = $1
		  AND id NOT IN (
			SELECT id FROM refresh_tokens
			WHERE subject_key = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		  )`,
		subjectKey, keep,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *refreshTokensRepo) CountForSubject(ctx context.Context, subjectKey string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM refresh_tokens WHERE subject_key = $1`, subjectKey,
	).Scan(&n)
	return n, err
}

func (r *refreshTokensRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at <= $1`, now.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRefreshToken(row rowScanner) (domain.RefreshToken, error) {
	var (
		t  domain.RefreshToken
		id string
	)
	err := row.Scan(&id, &t.SubjectKey, &t.Token, &t.SealedIdentity, &t.ExpiresAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	t.ID, err = idx.Parse(id)
	if err != nil {
		return domain.RefreshToken{}, err
	}
	return t, nil
}
