package http

import (
	"encoding/json"
	"net/http"

	"github.com/choosyhq/sessiond/internal/session/service"
	"github.com/choosyhq/sessiond/pkg/httpx"
	"github.com/choosyhq/sessiond/pkg/slogx"
)

// LogoutHandler revokes a single refresh token. Unknown tokens still
// get a 200: the session the caller wanted gone is gone.
type LogoutHandler struct {
	Sessions *service.SessionService
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "refresh_token required")
		return
	}

	if err := h.Sessions.Logout(ctx, req.RefreshToken); err != nil {
		slogx.FromContext(ctx).Error("logout failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "could not revoke session")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// LogoutAllHandler revokes every session of the authenticated caller.
type LogoutAllHandler struct {
	Sessions *service.SessionService
}

func (h *LogoutAllHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller := identityFromContext(ctx)
	if caller == nil {
		writeBearerError(w, "missing bearer token")
		return
	}

	n, err := h.Sessions.LogoutAll(ctx, caller)
	if err != nil {
		slogx.FromContext(ctx).Error("logout-all failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "could not revoke sessions")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]int64{"revoked_sessions": n})
}
