package http

import (
	"context"

	"github.com/choosyhq/sessiond/internal/session/domain"
)

type ctxKey struct{}

func contextWithIdentity(ctx context.Context, v *domain.VerifiedIdentity) context.Context {
	return context.WithValue(ctx, ctxKey{}, v)
}

// identityFromContext returns the verified caller attached by
// AuthnMiddleware, or nil on unauthenticated routes.
func identityFromContext(ctx context.Context) *domain.VerifiedIdentity {
	v, _ := ctx.Value(ctxKey{}).(*domain.VerifiedIdentity)
	return v
}
