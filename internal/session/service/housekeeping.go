package service

import (
	"context"
	"time"

	"github.com/choosyhq/sessiond/internal/session/metrics"
	"github.com/choosyhq/sessiond/pkg/slogx"
)

// RunHousekeeping sweeps expired refresh tokens on the given interval
// until ctx is cancelled. Expired tokens are already unusable (Consume
// checks expiry), so the sweep is about keeping the table small, not
// about correctness.
func (s *SessionService) RunHousekeeping(ctx context.Context, interval time.Duration) {
	log := slogx.FromContext(ctx).With("component", "housekeeping")
	log.Info("housekeeping started", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("housekeeping stopped")
			return
		case <-ticker.C:
			n, err := s.Store.RefreshTokens().DeleteExpired(ctx, time.Now().UTC())
			if err != nil {
				log.Error("expired token sweep failed", "err", err)
				continue
			}
			if n > 0 {
				metrics.SessionsRevoked.WithLabelValues("expired").Add(float64(n))
				log.Info("expired tokens swept", "count", n)
			}
		}
	}
}
