package http

import (
	"net/http"

	"github.com/choosyhq/sessiond/pkg/httpx"
	"github.com/choosyhq/sessiond/pkg/jwtx"
	"github.com/choosyhq/sessiond/pkg/slogx"
)

// JWKSHandler publishes the public signing key so other services can
// verify access tokens offline.
func JWKSHandler(keys *jwtx.Keyring) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, err := keys.SigningKey()
		if err != nil {
			slogx.FromContext(r.Context()).Error("signing key unavailable", "err", err)
			httpx.WriteError(w, http.StatusServiceUnavailable, "server_error", "signing key unavailable")
			return
		}
		httpx.WriteJSON(w, http.StatusOK, jwtx.PublicJWKS(key))
	})
}
