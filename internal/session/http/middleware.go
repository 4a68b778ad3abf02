package http

import (
	"net/http"
	"strings"

	"github.com/choosyhq/sessiond/internal/session/service"
	"github.com/choosyhq/sessiond/pkg/httpx"
	"github.com/choosyhq/sessiond/pkg/slogx"
)

// AuthnMiddleware verifies the bearer token on protected routes and
// attaches the verified identity to the request context. Every failure
// is the same 401; callers learn nothing about why a token died.
func AuthnMiddleware(sessions *service.SessionService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			verified, err := sessions.VerifyAccess(ctx, raw)
			if err != nil {
				log.Warn("bearer token rejected", "err", err)
				writeBearerError(w, "token verification failed")
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithIdentity(ctx, verified)))
		})
	}
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	w.WriteHeader(http.StatusUnauthorized)
}
