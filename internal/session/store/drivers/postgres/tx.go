package postgres

import (
	"context"

	"github.com/choosyhq/sessiond/internal/session/store"
	"github.com/jackc/pgx/v5"
)

type txStore struct {
	ctx context.Context
	tx  pgx.Tx
}

func (t *txStore) Commit() error   { return t.tx.Commit(t.ctx) }
func (t *txStore) Rollback() error { return t.tx.Rollback(t.ctx) }

func (t *txStore) Close() error { return nil } // outer pool stays open

func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed.
	return nil, pgx.ErrTxClosed
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return pgx.ErrTxClosed
}

func (t *txStore) RefreshTokens() store.RefreshTokens {
	return &refreshTokensRepo{db: t.tx}
}

func (t *txStore) ApplyMigrations() error { return nil } // applied before any tx starts
