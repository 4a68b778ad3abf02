// Package service orchestrates the session lifecycle: login, refresh,
// logout, and bulk revocation.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/choosyhq/sessiond/internal/session/denylist"
	"github.com/choosyhq/sessiond/internal/session/domain"
	"github.com/choosyhq/sessiond/internal/session/metrics"
	"github.com/choosyhq/sessiond/internal/session/store"
	"github.com/choosyhq/sessiond/internal/session/token"
	"github.com/choosyhq/sessiond/pkg/cryptox"
	"github.com/choosyhq/sessiond/pkg/idx"
	"github.com/choosyhq/sessiond/pkg/slogx"
)

// ErrUnauthenticated is the single error every failed refresh or
// bearer-token check collapses into. Callers cannot distinguish an
// unknown token from an expired or tampered one.
var ErrUnauthenticated = token.ErrUnauthenticated

// SessionService issues, rotates, and revokes the dual-token
// credential pairs.
type SessionService struct {
	Store    store.Store
	Tokens   *token.AccessTokens
	Sealer   *token.Sealer
	Denylist denylist.Denylist

	RefreshTTL            time.Duration
	MaxSessionsPerSubject int
}

// Login mints a fresh token pair for a verified identity. Issuing a
// new session evicts the subject's oldest sessions so at most
// MaxSessionsPerSubject survive, the new one included.
func (s *SessionService) Login(ctx context.Context, id domain.Identity) (*domain.TokenPair, error) {
	pair, err := s.issue(ctx, id)
	if err != nil {
		return nil, err
	}
	metrics.Logins.WithLabelValues(id.Platform).Inc()
	slogx.FromContext(ctx).Info("session created",
		"platform", id.Platform,
		"subject_key", id.SubjectKey(),
	)
	return pair, nil
}

// Refresh consumes a refresh token and mints a replacement pair. The
// presented token is spent whether or not the rest succeeds; a token
// that has already been spent, has expired, or never existed all
// produce the same ErrUnauthenticated.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	log := slogx.FromContext(ctx)

	rec, err := s.Store.RefreshTokens().Consume(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Unknown or already spent. The latter is what a replayed
			// stolen token looks like, so it is worth a log line.
			log.Warn("refresh token not found or already used")
			metrics.AuthFailures.WithLabelValues("refresh").Inc()
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("service: consume refresh token: %w", err)
	}

	if rec.Expired(time.Now().UTC()) {
		metrics.AuthFailures.WithLabelValues("refresh").Inc()
		metrics.SessionsRevoked.WithLabelValues("expired").Inc()
		return nil, ErrUnauthenticated
	}

	id, err := s.Sealer.Unseal(rec.SealedIdentity)
	if err != nil {
		// A stored blob that no longer opens means key rotation or
		// corruption; either way the session cannot continue.
		log.Error("stored identity blob failed to open", "err", err)
		metrics.AuthFailures.WithLabelValues("refresh").Inc()
		return nil, ErrUnauthenticated
	}

	pair, err := s.issue(ctx, id)
	if err != nil {
		return nil, err
	}
	metrics.Refreshes.Inc()
	return pair, nil
}

// Logout revokes a single refresh token. Unknown tokens are a success:
// the session the caller wanted gone is gone.
func (s *SessionService) Logout(ctx context.Context, refreshToken string) error {
	revoked, err := s.Store.RefreshTokens().Revoke(ctx, refreshToken)
	if err != nil {
		return fmt.Errorf("service: revoke refresh token: %w", err)
	}
	if revoked {
		metrics.SessionsRevoked.WithLabelValues("logout").Inc()
	}
	return nil
}

// LogoutAll revokes every session belonging to the verified caller and
// returns how many were removed. The caller's own access token JTI is
// denylisted for its remaining lifetime so it stops working now rather
// than at exp.
func (s *SessionService) LogoutAll(ctx context.Context, caller *domain.VerifiedIdentity) (int64, error) {
	n, err := s.Store.RefreshTokens().RevokeAllForSubject(ctx, caller.SubjectKey)
	if err != nil {
		return 0, fmt.Errorf("service: revoke all for subject: %w", err)
	}
	metrics.SessionsRevoked.WithLabelValues("logout_all").Add(float64(n))

	if remaining := time.Until(caller.ExpiresAt); remaining > 0 && caller.JTI != "" {
		if err := s.Denylist.Add(ctx, caller.JTI, remaining); err != nil {
			// The refresh tokens are already gone; the access token
			// dying at exp instead of now is an acceptable fallback.
			slogx.FromContext(ctx).Error("denylist add failed", "err", err)
		}
	}

	slogx.FromContext(ctx).Info("all sessions revoked",
		"subject_key", caller.SubjectKey,
		"count", n,
	)
	return n, nil
}

// VerifyAccess validates a bearer token and checks it against the
// denylist. This is what request authentication goes through.
func (s *SessionService) VerifyAccess(ctx context.Context, raw string) (*domain.VerifiedIdentity, error) {
	verified, err := s.Tokens.Verify(raw)
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			metrics.AuthFailures.WithLabelValues("access").Inc()
		}
		return nil, err
	}

	blocked, err := s.Denylist.Contains(ctx, verified.JTI)
	if err != nil {
		return nil, fmt.Errorf("service: denylist check: %w", err)
	}
	if blocked {
		metrics.AuthFailures.WithLabelValues("access").Inc()
		return nil, ErrUnauthenticated
	}
	return verified, nil
}

// issue builds a token pair and persists the refresh half, evicting
// over-quota sessions in the same transaction so the cap holds even
// under concurrent logins.
func (s *SessionService) issue(ctx context.Context, id domain.Identity) (*domain.TokenPair, error) {
	sealed, err := s.Sealer.Seal(id)
	if err != nil {
		return nil, err
	}

	access, err := s.Tokens.Issue(sealed)
	if err != nil {
		return nil, err
	}

	body, err := cryptox.GenerateBase62Token(cryptox.TokenSize192)
	if err != nil {
		return nil, err
	}
	refresh := id.Platform + ":" + body

	subjectKey := id.SubjectKey()
	now := time.Now().UTC()
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		evicted, err := tx.RefreshTokens().EvictOverQuota(ctx, subjectKey, s.MaxSessionsPerSubject-1)
		if err != nil {
			return err
		}
		if evicted > 0 {
			metrics.SessionsRevoked.WithLabelValues("quota").Add(float64(evicted))
		}
		return tx.RefreshTokens().Create(ctx, domain.RefreshToken{
			ID:             idx.New(),
			SubjectKey:     subjectKey,
			Token:          refresh,
			SealedIdentity: sealed,
			ExpiresAt:      now.Add(s.RefreshTTL),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("service: persist refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.Tokens.TTL.Seconds()),
	}, nil
}
