// Package http wires the session service's endpoints onto a ServeMux
// with per-route rate limits and bearer authentication where needed.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/choosyhq/sessiond/internal/session/idp"
	"github.com/choosyhq/sessiond/internal/session/service"
	"github.com/choosyhq/sessiond/internal/session/store"
	"github.com/choosyhq/sessiond/pkg/httpx"
	"github.com/choosyhq/sessiond/pkg/jwtx"
	"github.com/choosyhq/sessiond/pkg/slogx"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.Keyring
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store     store.Store
	Sessions  *service.SessionService
	Providers *idp.Registry
}

func NewRouter(
	keys *jwtx.Keyring,
	buildVersion string,
	st store.Store,
	sessions *service.SessionService,
	providers *idp.Registry,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
		Sessions:     sessions,
		Providers:    providers,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware
// chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// Login and refresh carry strict limits: both are where credential
	// guessing would happen.
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(&LoginHandler{Sessions: r.Sessions, Providers: r.Providers},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(&RefreshHandler{Sessions: r.Sessions},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(&LogoutHandler{Sessions: r.Sessions},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/logout-all",
		httpx.Chain(&LogoutAllHandler{Sessions: r.Sessions},
			AuthnMiddleware(r.Sessions),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /v1/userinfo",
		httpx.Chain(&UserInfoHandler{},
			AuthnMiddleware(r.Sessions),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /metrics", promhttp.Handler())
}
