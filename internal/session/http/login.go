package http

import (
	"encoding/json"
	"net/http"

	"github.com/choosyhq/sessiond/internal/session/idp"
	"github.com/choosyhq/sessiond/internal/session/metrics"
	"github.com/choosyhq/sessiond/internal/session/service"
	"github.com/choosyhq/sessiond/pkg/httpx"
	"github.com/choosyhq/sessiond/pkg/slogx"
)

// LoginHandler exchanges platform credentials for a token pair.
type LoginHandler struct {
	Sessions  *service.SessionService
	Providers *idp.Registry
}

type loginRequest struct {
	// Platform selects the identity provider. Defaults to "wx".
	Platform string `json:"platform,omitempty"`
	idp.Credentials
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if req.Platform == "" {
		req.Platform = "wx"
	}

	provider, err := h.Providers.Lookup(req.Platform)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "unknown platform")
		return
	}

	identity, err := provider.Exchange(ctx, req.Credentials)
	if err != nil {
		log.Warn("credential exchange failed", "platform", req.Platform, "err", err)
		metrics.AuthFailures.WithLabelValues("login").Inc()
		httpx.WriteError(w, http.StatusBadRequest, "invalid_grant", "credential exchange failed")
		return
	}

	pair, err := h.Sessions.Login(ctx, identity)
	if err != nil {
		log.Error("login failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "could not create session")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, pair)
}
